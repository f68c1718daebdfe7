package catalog

import (
	"context"
	"strings"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

// DefaultCategories are seeded into an empty store on open.
var DefaultCategories = []string{"Food", "Snack", "Beverage", "Detergent"}

// ItemFields is a partial update: nil fields are left alone.
type ItemFields struct {
	Name       *string
	Price      *float64
	ImageURI   *string
	CategoryID *int64
}

// Store is the durable catalog. Implementations enforce trimmed non-empty
// names, case-insensitive name uniqueness among active records, non-negative
// prices and an existing category on every item write. Deleting a category
// cascades: its active items move to the recently-deleted holding area.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	AddCategory(ctx context.Context, name string) (*models.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	AddItem(ctx context.Context, name string, price float64, imageURI string, categoryID int64) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, fields ItemFields) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error

	ListDeletedItems(ctx context.Context) ([]models.DeletedItem, error)
	RestoreItem(ctx context.Context, id int64) (*models.Item, error)
	PurgeDeletedItem(ctx context.Context, id int64) error

	SearchItems(ctx context.Context, query string) ([]models.Item, error)
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]models.Item, error)

	Close() error
}

// NormalizeName is the canonical form used for uniqueness checks.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
