// Package export writes the whole recipe catalog to object storage as one
// JSON document.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageza/recipe-catalog/backend/internal/links"
	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// DefaultPageSize is the page size used to walk the catalog.
const DefaultPageSize = 100

// Lister pages through the catalog.
type Lister interface {
	ListRecipes(ctx context.Context, skip, limit int, baseURL string) (*model.PaginatedResponse, error)
}

// ObjectPutter stores an object. config.S3Config implements it.
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// Document is the exported catalog.
type Document struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Recipes    []model.Recipe `json:"recipes"`
}

type Exporter struct {
	recipes  Lister
	putter   ObjectPutter
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

func NewExporter(recipes Lister, putter ObjectPutter, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		recipes:  recipes,
		putter:   putter,
		pageSize: DefaultPageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// Export walks every page of the catalog and uploads it under key. It
// returns the number of recipes written.
func (e *Exporter) Export(ctx context.Context, key string) (int, error) {
	doc := Document{ExportedAt: e.now().UTC(), Recipes: []model.Recipe{}}

	for skip := 0; ; skip += e.pageSize {
		page, err := e.recipes.ListRecipes(ctx, skip, e.pageSize, "/recipes")
		if err != nil {
			return 0, fmt.Errorf("failed to list recipes at skip %d: %w", skip, err)
		}
		doc.Recipes = append(doc.Recipes, page.Items...)
		e.logger.Debug("exported page", "skip", skip, "items", len(page.Items))

		if _, more := page.Links[links.RelNext]; !more {
			break
		}
	}
	doc.Count = len(doc.Recipes)

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := e.putter.PutObject(ctx, key, body, "application/json"); err != nil {
		return 0, fmt.Errorf("failed to upload catalog to %s: %w", key, err)
	}

	e.logger.Info("catalog exported", "key", key, "recipes", doc.Count)
	return doc.Count, nil
}
