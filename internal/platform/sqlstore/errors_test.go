package sqlstore

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/todo-core/internal/store"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.ErrorIs(t, MapError(sql.ErrNoRows), store.ErrNotFound)

	tests := []struct {
		code string
		want error
	}{
		{uniqueViolationCode, store.ErrDuplicate},
		{foreignKeyViolationCode, store.ErrInvalidEntity},
		{checkViolationCode, store.ErrInvalidEntity},
		{notNullViolationCode, store.ErrInvalidEntity},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: "c"}
			err := MapError(pgErr)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.code)
		})
	}

	other := errors.New("connection reset")
	assert.Same(t, other, MapError(other))

	unmapped := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(unmapped), MapError(unmapped))
}
