package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/ledger?sslmode=disable", migrateURL("postgres://u:p@db:5432/ledger?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/ledger", migrateURL("postgresql://u@db/ledger"))
	assert.Equal(t, "pgx5://ya/ok", migrateURL("pgx5://ya/ok"))
}

func TestMigrationsEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	assert.Positive(t, up)
	assert.Equal(t, up, down, "cada migración up tiene su down")
}
