package reaper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnce(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewWithClock(poolMock, DefaultInterval, func() time.Time { return now })

	poolMock.ExpectExec("DELETE FROM social_schema.users").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestRunOnceNothingExpired(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	r := New(poolMock)

	poolMock.ExpectExec("DELETE FROM social_schema.users").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRunOnceDatabaseError(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	r := New(poolMock)

	poolMock.ExpectExec("DELETE FROM social_schema.users").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	removed, err := r.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, removed)
}
