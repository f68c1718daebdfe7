package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
	"github.com/jmdelacruz/sarisari-pos/internal/storage"
)

const FileName = "catalog.json"

type snapshot struct {
	NextCategoryID int64                `json:"next_category_id"`
	NextItemID     int64                `json:"next_item_id"`
	Categories     []models.Category    `json:"categories"`
	Items          []models.Item        `json:"items"`
	Deleted        []models.DeletedItem `json:"deleted"`
}

// Store is the flat-file catalog backend: the whole catalog is one JSON
// snapshot rewritten on every mutation. Same contract as the SQL backend,
// including the category-delete cascade.
type Store struct {
	mu   sync.RWMutex
	file *storage.JSONStore
	snap snapshot
}

var _ catalog.Store = (*Store)(nil)

func Open(dataDir string) (*Store, error) {
	file, err := storage.NewJSONStore(dataDir, FileName)
	if err != nil {
		return nil, err
	}

	s := &Store{file: file, snap: snapshot{NextCategoryID: 1, NextItemID: 1}}
	if err := file.Load(&s.snap); err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	if len(s.snap.Categories) == 0 && len(s.snap.Items) == 0 && len(s.snap.Deleted) == 0 {
		for _, name := range catalog.DefaultCategories {
			s.snap.Categories = append(s.snap.Categories, models.Category{ID: s.snap.NextCategoryID, Name: name})
			s.snap.NextCategoryID++
		}
		if err := s.file.Save(&s.snap); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Close() error { return nil }

// persist writes the working snapshot; on failure the in-memory snapshot is
// rolled back so memory never drifts ahead of disk.
func (s *Store) persist(prev snapshot) error {
	if err := s.file.Save(&s.snap); err != nil {
		s.snap = prev
		return err
	}
	return nil
}

func cloneSnapshot(in snapshot) snapshot {
	out := in
	out.Categories = append([]models.Category(nil), in.Categories...)
	out.Items = append([]models.Item(nil), in.Items...)
	out.Deleted = append([]models.DeletedItem(nil), in.Deleted...)
	return out
}

func (s *Store) categoryName(id int64) string {
	for _, c := range s.snap.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Store) withCategoryName(it models.Item) models.Item {
	it.CategoryName = s.categoryName(it.CategoryID)
	return it
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.snap.Categories...), nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.snap.Categories {
		if c.ID == id {
			cat := c
			return &cat, nil
		}
	}
	return nil, fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
}

func (s *Store) categoryNameTaken(name string, excludeID int64) error {
	norm := catalog.NormalizeName(name)
	for _, c := range s.snap.Categories {
		if c.ID != excludeID && catalog.NormalizeName(c.Name) == norm {
			return fmt.Errorf("%w: category %q", catalog.ErrDuplicateName, name)
		}
	}
	return nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := catalog.CleanName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categoryNameTaken(name, 0); err != nil {
		return nil, err
	}

	prev := cloneSnapshot(s.snap)
	cat := models.Category{ID: s.snap.NextCategoryID, Name: name}
	s.snap.NextCategoryID++
	s.snap.Categories = append(s.snap.Categories, cat)
	if err := s.persist(prev); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	name, err := catalog.CleanName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.snap.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
	}
	if err := s.categoryNameTaken(name, id); err != nil {
		return err
	}

	prev := cloneSnapshot(s.snap)
	s.snap.Categories[idx].Name = name
	return s.persist(prev)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.snap.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: category %d", catalog.ErrNotFound, id)
	}

	prev := cloneSnapshot(s.snap)
	s.snap.Categories = append(s.snap.Categories[:idx], s.snap.Categories[idx+1:]...)

	// Cascade: referencing items go to the holding area instead of dangling.
	now := time.Now().Unix()
	kept := s.snap.Items[:0]
	for _, it := range s.snap.Items {
		if it.CategoryID == id {
			s.snap.Deleted = append(s.snap.Deleted, models.DeletedItem{
				ID:         it.ID,
				Name:       it.Name,
				Price:      it.Price,
				ImageURI:   it.ImageURI,
				CategoryID: it.CategoryID,
				DeletedAt:  now,
			})
			continue
		}
		kept = append(kept, it)
	}
	s.snap.Items = kept
	return s.persist(prev)
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, 0, len(s.snap.Items))
	for _, it := range s.snap.Items {
		items = append(items, s.withCategoryName(it))
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.snap.Items {
		if it.ID == id {
			out := s.withCategoryName(it)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
}

func (s *Store) itemNameTaken(name string, excludeID int64) error {
	norm := catalog.NormalizeName(name)
	for _, it := range s.snap.Items {
		if it.ID != excludeID && catalog.NormalizeName(it.Name) == norm {
			return fmt.Errorf("%w: item %q", catalog.ErrDuplicateName, name)
		}
	}
	return nil
}

func (s *Store) categoryExists(id int64) error {
	for _, c := range s.snap.Categories {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: category %d", catalog.ErrInvalidCategory, id)
}

func (s *Store) AddItem(ctx context.Context, name string, price float64, imageURI string, categoryID int64) (*models.Item, error) {
	name, err := catalog.CleanName(name)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckPrice(price); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categoryExists(categoryID); err != nil {
		return nil, err
	}
	if err := s.itemNameTaken(name, 0); err != nil {
		return nil, err
	}

	prev := cloneSnapshot(s.snap)
	item := models.Item{ID: s.snap.NextItemID, Name: name, Price: price, ImageURI: imageURI, CategoryID: categoryID}
	s.snap.NextItemID++
	s.snap.Items = append(s.snap.Items, item)
	if err := s.persist(prev); err != nil {
		return nil, err
	}
	out := s.withCategoryName(item)
	return &out, nil
}

func (s *Store) UpdateItem(ctx context.Context, id int64, fields catalog.ItemFields) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.snap.Items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
	}

	item := s.snap.Items[idx]
	if fields.Name != nil {
		name, err := catalog.CleanName(*fields.Name)
		if err != nil {
			return nil, err
		}
		if err := s.itemNameTaken(name, id); err != nil {
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
		if err := s.categoryExists(*fields.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *fields.CategoryID
	}

	prev := cloneSnapshot(s.snap)
	s.snap.Items[idx] = item
	if err := s.persist(prev); err != nil {
		return nil, err
	}
	out := s.withCategoryName(item)
	return &out, nil
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.snap.Items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: item %d", catalog.ErrNotFound, id)
	}

	prev := cloneSnapshot(s.snap)
	it := s.snap.Items[idx]
	s.snap.Deleted = append(s.snap.Deleted, models.DeletedItem{
		ID:         it.ID,
		Name:       it.Name,
		Price:      it.Price,
		ImageURI:   it.ImageURI,
		CategoryID: it.CategoryID,
		DeletedAt:  time.Now().Unix(),
	})
	s.snap.Items = append(s.snap.Items[:idx], s.snap.Items[idx+1:]...)
	return s.persist(prev)
}

func (s *Store) ListDeletedItems(ctx context.Context) ([]models.DeletedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held := append([]models.DeletedItem(nil), s.snap.Deleted...)
	sort.SliceStable(held, func(i, j int) bool {
		if held[i].DeletedAt != held[j].DeletedAt {
			return held[i].DeletedAt > held[j].DeletedAt
		}
		return held[i].ID > held[j].ID
	})
	return held, nil
}

func (s *Store) RestoreItem(ctx context.Context, id int64) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.snap.Deleted {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: deleted item %d", catalog.ErrNotFound, id)
	}

	held := s.snap.Deleted[idx]
	if err := s.itemNameTaken(held.Name, 0); err != nil {
		return nil, err
	}
	if err := s.categoryExists(held.CategoryID); err != nil {
		return nil, err
	}

	prev := cloneSnapshot(s.snap)
	item := models.Item{ID: held.ID, Name: held.Name, Price: held.Price, ImageURI: held.ImageURI, CategoryID: held.CategoryID}
	s.snap.Items = append(s.snap.Items, item)
	s.snap.Deleted = append(s.snap.Deleted[:idx], s.snap.Deleted[idx+1:]...)
	if err := s.persist(prev); err != nil {
		return nil, err
	}
	out := s.withCategoryName(item)
	return &out, nil
}

func (s *Store) PurgeDeletedItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.snap.Deleted {
		if d.ID == id {
			prev := cloneSnapshot(s.snap)
			s.snap.Deleted = append(s.snap.Deleted[:i], s.snap.Deleted[i+1:]...)
			return s.persist(prev)
		}
	}
	return nil
}

func (s *Store) SearchItems(ctx context.Context, query string) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm := strings.ToLower(query)
	var items []models.Item
	for _, it := range s.snap.Items {
		if strings.Contains(strings.ToLower(it.Name), norm) {
			items = append(items, s.withCategoryName(it))
		}
	}
	return items, nil
}

func (s *Store) ListItemsByCategory(ctx context.Context, categoryID int64) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.Item
	for _, it := range s.snap.Items {
		if it.CategoryID == categoryID {
			items = append(items, s.withCategoryName(it))
		}
	}
	return items, nil
}
