package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsPermanent(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	badText := &pgconn.PgError{Code: "22P02"}
	lockTimeout := &pgconn.PgError{Code: "55P03"}

	assert.True(t, IsPermanent(mapError(fk)))
	assert.True(t, IsPermanent(fmt.Errorf("insert: %w", badText)))
	assert.True(t, IsPermanent(ErrConflict))

	assert.False(t, IsPermanent(lockTimeout))
	assert.False(t, IsPermanent(context.DeadlineExceeded))
	assert.False(t, IsPermanent(errors.New("connection reset")))
}
