package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/executor_factory"
)

type databasePingerMock struct{ mock.Mock }

func (m *databasePingerMock) Ping(ctx context.Context, exec repositories.Executor) error {
	return m.Called(ctx, exec).Error(0)
}

type redisPingerMock struct{ mock.Mock }

func (m *redisPingerMock) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestProbeUsecase_Health(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	exec := executor_factory.NewExecutorFactoryStub()

	t.Run("without redis", func(t *testing.T) {
		db := new(databasePingerMock)
		db.On("Ping", ctx, mock.Anything).Return(nil)

		report := ProbeUsecase{executorFactory: exec, database: db, clock: clock.NewMock(now)}.Health(ctx)

		assert.True(t, report.Healthy())
		assert.Equal(t, now, report.CheckedAt)
		assert.Len(t, report.Checks, 1)
		assert.Equal(t, models.HealthComponentDatabase, report.Checks[0].Component)
	})

	t.Run("redis down", func(t *testing.T) {
		db := new(databasePingerMock)
		db.On("Ping", ctx, mock.Anything).Return(nil)
		redis := new(redisPingerMock)
		redis.On("Ping", ctx).Return(errors.New("connection refused"))

		report := ProbeUsecase{
			executorFactory: exec,
			database:        db,
			redis:           redis,
			clock:           clock.NewMock(now),
		}.Health(ctx)

		assert.False(t, report.Healthy())
		assert.Len(t, report.Checks, 2)
		assert.Equal(t, models.HealthComponentRedis, report.Checks[1].Component)
		assert.Equal(t, "connection refused", report.Checks[1].Error)
	})
}

func TestProbeUsecase_Liveness(t *testing.T) {
	ctx := context.Background()
	db := new(databasePingerMock)
	db.On("Ping", ctx, mock.Anything).Return(errors.New("timeout"))

	err := ProbeUsecase{
		executorFactory: executor_factory.NewExecutorFactoryStub(),
		database:        db,
		clock:           clock.NewMock(time.Now()),
	}.Liveness(ctx)

	assert.Error(t, err)
	db.AssertExpectations(t)
}
