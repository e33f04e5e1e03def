package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/artfolio/artfolio/pkg/pg"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFound(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFound(fmt.Errorf("query user: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFound(nil))
	assert.False(t, pg.IsNotFound(errors.New("boom")))
}

func TestIsDuplicateKey(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.True(t, pg.IsDuplicateKey(dup))
	assert.True(t, pg.IsDuplicateKey(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, pg.IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKey(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsForeignKeyViolation(nil))
}
