package repositories

import "github.com/invoicebox/backend/repositories/clock"

// DbRepository holds the Postgres queries of every domain entity. Methods take the executor
// they run on, so that usecases control the transaction boundaries.
type DbRepository struct {
	clock clock.Clock
}

func NewDbRepository(c clock.Clock) *DbRepository {
	if c == nil {
		c = clock.New()
	}
	return &DbRepository{clock: c}
}
