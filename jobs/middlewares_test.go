package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"

	"github.com/invoicebox/backend/utils"
)

func TestWorkspaceOf(t *testing.T) {
	assert.Equal(t, "ws-1", workspaceOf(&rivertype.JobRow{EncodedArgs: []byte(`{"workspace_id":"ws-1"}`)}))
	assert.Empty(t, workspaceOf(&rivertype.JobRow{EncodedArgs: []byte(`{}`)}))
}

func TestRecovererMiddleware(t *testing.T) {
	err := NewRecoveredMiddleware().Work(context.Background(), &rivertype.JobRow{ID: 4, Kind: "weekly_report"},
		func(ctx context.Context) error {
			panic("boom")
		})

	assert.ErrorContains(t, err, "panic in weekly_report job 4: boom")
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	job := &rivertype.JobRow{
		ID:          7,
		Kind:        "workspace_weekly_report",
		Attempt:     1,
		EncodedArgs: []byte(`{"workspace_id":"ws-9"}`),
	}

	err := NewLoggerMiddleware(logger).Work(context.Background(), job, func(ctx context.Context) error {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "inside")
		return nil
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=inside")
	assert.Contains(t, buf.String(), "workspace_id=ws-9")
	assert.Contains(t, buf.String(), "workspace_weekly_report job 7 succeeded")
}
