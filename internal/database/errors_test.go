package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})

	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "22001"}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}

func TestIsRowError(t *testing.T) {
	cases := map[string]bool{
		"23505": true,  // unique_violation
		"23502": true,  // not_null_violation
		"22001": true,  // string_data_right_truncation
		"22P02": true,  // invalid_text_representation
		"42P01": false, // undefined_table
		"08006": false, // connection_failure
	}
	for code, want := range cases {
		assert.Equal(t, want, IsRowError(&pgconn.PgError{Code: code}), code)
	}
	assert.False(t, IsRowError(errors.New("plain")))
}
