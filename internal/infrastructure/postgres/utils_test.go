package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sin filas", pgx.ErrNoRows, true},
		{"sin filas envuelto", fmt.Errorf("get sale: %w", pgx.ErrNoRows), true},
		{"uuid mal formado", &pgconn.PgError{Code: "22P02"}, true},
		{"uuid mal formado envuelto", fmt.Errorf("get sale: %w", &pgconn.PgError{Code: "22P02"}), true},
		{"violación de unicidad", &pgconn.PgError{Code: "23505"}, false},
		{"otro error", errors.New("conexión cerrada"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "22P02"}))
}
