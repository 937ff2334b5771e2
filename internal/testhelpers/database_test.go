package testhelpers

import (
	"testing"

	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)
	require.NotNil(t, db)

	for _, table := range []string{"recipes", "ingredients", "nutrition"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	row := store.RecipeRow{Name: "Toast"}
	require.NoError(t, db.Create(&row).Error)
	assert.NotZero(t, row.RecipeID)
}
