package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestExportWalksEveryPage(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRecipeService(store.NewGateway(testhelpers.SetupSQLite(t)))
	for i := 0; i < 7; i++ {
		_, err := svc.CreateRecipe(ctx, &model.Recipe{Name: fmt.Sprintf("Recipe %d", i)})
		require.NoError(t, err)
	}

	var uploaded []byte
	putter := new(mockPutter)
	putter.On("PutObject", ctx, "exports/catalog.json", mock.Anything, "application/json").
		Run(func(args mock.Arguments) { uploaded = args.Get(2).([]byte) }).
		Return(nil)

	exp := NewExporter(svc, putter, quietLogger())
	exp.pageSize = 3
	exp.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	n, err := exp.Export(ctx, "exports/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	putter.AssertExpectations(t)

	var doc Document
	require.NoError(t, json.Unmarshal(uploaded, &doc))
	assert.Equal(t, 7, doc.Count)
	require.Len(t, doc.Recipes, 7)
	assert.Equal(t, "Recipe 0", doc.Recipes[0].Name)
	assert.Equal(t, "Recipe 6", doc.Recipes[6].Name)
	assert.True(t, doc.ExportedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestExportEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRecipeService(store.NewGateway(testhelpers.SetupSQLite(t)))

	putter := new(mockPutter)
	putter.On("PutObject", ctx, "empty.json", mock.Anything, "application/json").Return(nil)

	n, err := NewExporter(svc, putter, quietLogger()).Export(ctx, "empty.json")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExportUploadFailure(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRecipeService(store.NewGateway(testhelpers.SetupSQLite(t)))

	putter := new(mockPutter)
	putter.On("PutObject", ctx, "k", mock.Anything, "application/json").Return(errors.New("access denied"))

	_, err := NewExporter(svc, putter, quietLogger()).Export(ctx, "k")
	assert.ErrorContains(t, err, "access denied")
}
