package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

const FileName = "sarisari.db"

// Store is the relational catalog backend on embedded SQLite.
type Store struct {
	db *gorm.DB
}

func Open(dataDir string) (*Store, error) {
	return open(sqlite.Open(filepath.Join(dataDir, FileName)))
}

// OpenMemory opens a throwaway in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	return open(sqlite.Open(":memory:"))
}

func open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Item{}, &models.DeletedItem{}); err != nil {
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedDefaults(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seedDefaults(ctx context.Context) error {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	for _, name := range catalog.DefaultCategories {
		if err := s.db.WithContext(ctx).Create(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Store) categoryNameTaken(ctx context.Context, name string, excludeID int64) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = ? AND id <> ?", catalog.NormalizeName(name), excludeID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q", catalog.ErrDuplicateName, name)
	}
	return nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := catalog.CleanName(name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryNameTaken(ctx, name, 0); err != nil {
		return nil, err
	}

	cat := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	name, err := catalog.CleanName(name)
	if err != nil {
		return err
	}

	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
		}
		return err
	}
	if err := s.categoryNameTaken(ctx, name, id); err != nil {
		return err
	}

	cat.Name = name
	return s.db.WithContext(ctx).Save(&cat).Error
}

// DeleteCategory removes the category and cascades: its active items are moved
// to the recently-deleted holding area in the same transaction.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
		}

		var items []models.Item
		if err := tx.Where("category_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		now := time.Now().Unix()
		for _, it := range items {
			held := models.DeletedItem{
				ID:         it.ID,
				Name:       it.Name,
				Price:      it.Price,
				ImageURI:   it.ImageURI,
				CategoryID: it.CategoryID,
				DeletedAt:  now,
			}
			if err := tx.Create(&held).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.Where("category_id = ?", id).Delete(&models.Item{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) itemQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Item{}).
		Select("items.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = items.category_id")
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.itemQuery(ctx).Order("items.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var items []models.Item
	if err := s.itemQuery(ctx).Where("items.id = ?", id).Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
	}
	return &items[0], nil
}

func (s *Store) itemNameTaken(ctx context.Context, name string, excludeID int64) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("LOWER(name) = ? AND id <> ?", catalog.NormalizeName(name), excludeID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: item %q", catalog.ErrDuplicateName, name)
	}
	return nil
}

func (s *Store) checkCategoryExists(ctx context.Context, id int64) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: category %d", catalog.ErrInvalidCategory, id)
	}
	return nil
}

func (s *Store) AddItem(ctx context.Context, name string, price float64, imageURI string, categoryID int64) (*models.Item, error) {
	name, err := catalog.CleanName(name)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckPrice(price); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, categoryID); err != nil {
		return nil, err
	}
	if err := s.itemNameTaken(ctx, name, 0); err != nil {
		return nil, err
	}

	item := models.Item{Name: name, Price: price, ImageURI: imageURI, CategoryID: categoryID}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return s.GetItem(ctx, item.ID)
}

func (s *Store) UpdateItem(ctx context.Context, id int64, fields catalog.ItemFields) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
		}
		return nil, err
	}

	if fields.Name != nil {
		name, err := catalog.CleanName(*fields.Name)
		if err != nil {
			return nil, err
		}
		if err := s.itemNameTaken(ctx, name, id); err != nil {
			return nil, err
		}
		item.Name = name
	}
	if fields.Price != nil {
		if err := catalog.CheckPrice(*fields.Price); err != nil {
			return nil, err
		}
		item.Price = *fields.Price
	}
	if fields.ImageURI != nil {
		item.ImageURI = *fields.ImageURI
	}
	if fields.CategoryID != nil {
		if err := s.checkCategoryExists(ctx, *fields.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *fields.CategoryID
	}

	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
			}
			return err
		}
		held := models.DeletedItem{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			ImageURI:   item.ImageURI,
			CategoryID: item.CategoryID,
			DeletedAt:  time.Now().Unix(),
		}
		if err := tx.Create(&held).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
}

func (s *Store) ListDeletedItems(ctx context.Context) ([]models.DeletedItem, error) {
	var held []models.DeletedItem
	if err := s.db.WithContext(ctx).Order("deleted_at DESC, id DESC").Find(&held).Error; err != nil {
		return nil, err
	}
	return held, nil
}

// RestoreItem moves a held item back into the active catalog. Uniqueness is
// re-checked at restore time, and the original category must still exist.
func (s *Store) RestoreItem(ctx context.Context, id int64) (*models.Item, error) {
	var held models.DeletedItem
	if err := s.db.WithContext(ctx).First(&held, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deleted item %d", catalog.ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.itemNameTaken(ctx, held.Name, 0); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, held.CategoryID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := models.Item{
			ID:         held.ID,
			Name:       held.Name,
			Price:      held.Price,
			ImageURI:   held.ImageURI,
			CategoryID: held.CategoryID,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DeletedItem{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// PurgeDeletedItem is idempotent: purging an id that is not held is a no-op.
func (s *Store) PurgeDeletedItem(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.DeletedItem{}, id).Error
}

func (s *Store) SearchItems(ctx context.Context, query string) ([]models.Item, error) {
	var items []models.Item
	err := s.itemQuery(ctx).
		Where("items.name LIKE ?", "%"+query+"%").
		Order("items.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListItemsByCategory(ctx context.Context, categoryID int64) ([]models.Item, error) {
	var items []models.Item
	err := s.itemQuery(ctx).
		Where("items.category_id = ?", categoryID).
		Order("items.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

var _ catalog.Store = (*Store)(nil)
