// Package view keeps an in-memory mirror of the catalog for display reads.
// Mutations go through one optimistic routine: the mirror is updated first,
// the durable write runs second, and a failed write restores the exact
// pre-mutation state before the error is returned.
package view

import (
	"context"
	"sync"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

type State struct {
	Categories []models.Category
	Items      []models.Item
}

func (st State) clone() State {
	return State{
		Categories: append([]models.Category(nil), st.Categories...),
		Items:      append([]models.Item(nil), st.Items...),
	}
}

type Catalog struct {
	store catalog.Store

	mu    sync.RWMutex
	state State

	subMu sync.Mutex
	subs  []chan struct{}

	tempMu sync.Mutex
	temp   int64
}

func New(store catalog.Store) *Catalog {
	return &Catalog{store: store}
}

// Refresh replaces the mirror with the store's current contents.
func (c *Catalog) Refresh(ctx context.Context) error {
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	items, err := c.store.ListItems(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state = State{Categories: cats, Items: items}
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Catalog) Items() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Item(nil), c.state.Items...)
}

func (c *Catalog) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Category(nil), c.state.Categories...)
}

// Subscribe returns a channel that receives a tick after every committed or
// rolled-back mutation and every refresh. Replaces the string-keyed event bus
// the screens used to poke each other with.
func (c *Catalog) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Catalog) notify() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// tempID hands out negative placeholder ids so a speculative insert can never
// collide with a store-assigned id.
func (c *Catalog) tempID() int64 {
	c.tempMu.Lock()
	defer c.tempMu.Unlock()
	c.temp--
	return c.temp
}

// mutate is the one reconciliation routine. apply edits the mirror
// speculatively; commit performs the durable write and may return a resolve
// func that patches the mirror in place (temp id swap) on success. On error
// the pre-apply snapshot is restored before mutate returns.
func (c *Catalog) mutate(ctx context.Context, apply func(*State), commit func(context.Context) (func(*State), error)) error {
	c.mu.Lock()
	snap := c.state.clone()
	apply(&c.state)
	c.mu.Unlock()

	resolve, err := commit(ctx)

	c.mu.Lock()
	if err != nil {
		c.state = snap
	} else if resolve != nil {
		resolve(&c.state)
	}
	c.mu.Unlock()
	c.notify()
	return err
}

func (c *Catalog) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	temp := c.tempID()
	var created *models.Category
	err := c.mutate(ctx,
		func(st *State) {
			st.Categories = append(st.Categories, models.Category{ID: temp, Name: name})
		},
		func(ctx context.Context) (func(*State), error) {
			cat, err := c.store.AddCategory(ctx, name)
			if err != nil {
				return nil, err
			}
			created = cat
			return func(st *State) {
				for i := range st.Categories {
					if st.Categories[i].ID == temp {
						st.Categories[i] = *cat
					}
				}
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Catalog) RenameCategory(ctx context.Context, id int64, name string) error {
	return c.mutate(ctx,
		func(st *State) {
			for i := range st.Categories {
				if st.Categories[i].ID == id {
					st.Categories[i].Name = name
				}
			}
			for i := range st.Items {
				if st.Items[i].CategoryID == id {
					st.Items[i].CategoryName = name
				}
			}
		},
		func(ctx context.Context) (func(*State), error) {
			return nil, c.store.RenameCategory(ctx, id, name)
		})
}

func (c *Catalog) DeleteCategory(ctx context.Context, id int64) error {
	return c.mutate(ctx,
		func(st *State) {
			kept := st.Categories[:0]
			for _, cat := range st.Categories {
				if cat.ID != id {
					kept = append(kept, cat)
				}
			}
			st.Categories = kept

			// Mirror the store's cascade.
			items := st.Items[:0]
			for _, it := range st.Items {
				if it.CategoryID != id {
					items = append(items, it)
				}
			}
			st.Items = items
		},
		func(ctx context.Context) (func(*State), error) {
			return nil, c.store.DeleteCategory(ctx, id)
		})
}

func (c *Catalog) AddItem(ctx context.Context, name string, price float64, imageURI string, categoryID int64) (*models.Item, error) {
	temp := c.tempID()
	var created *models.Item
	err := c.mutate(ctx,
		func(st *State) {
			st.Items = append(st.Items, models.Item{
				ID:         temp,
				Name:       name,
				Price:      price,
				ImageURI:   imageURI,
				CategoryID: categoryID,
			})
		},
		func(ctx context.Context) (func(*State), error) {
			item, err := c.store.AddItem(ctx, name, price, imageURI, categoryID)
			if err != nil {
				return nil, err
			}
			created = item
			return func(st *State) {
				for i := range st.Items {
					if st.Items[i].ID == temp {
						st.Items[i] = *item
					}
				}
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Catalog) UpdateItem(ctx context.Context, id int64, fields catalog.ItemFields) (*models.Item, error) {
	var updated *models.Item
	err := c.mutate(ctx,
		func(st *State) {
			for i := range st.Items {
				if st.Items[i].ID != id {
					continue
				}
				if fields.Name != nil {
					st.Items[i].Name = *fields.Name
				}
				if fields.Price != nil {
					st.Items[i].Price = *fields.Price
				}
				if fields.ImageURI != nil {
					st.Items[i].ImageURI = *fields.ImageURI
				}
				if fields.CategoryID != nil {
					st.Items[i].CategoryID = *fields.CategoryID
				}
			}
		},
		func(ctx context.Context) (func(*State), error) {
			item, err := c.store.UpdateItem(ctx, id, fields)
			if err != nil {
				return nil, err
			}
			updated = item
			return func(st *State) {
				for i := range st.Items {
					if st.Items[i].ID == id {
						st.Items[i] = *item
					}
				}
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Catalog) DeleteItem(ctx context.Context, id int64) error {
	return c.mutate(ctx,
		func(st *State) {
			kept := st.Items[:0]
			for _, it := range st.Items {
				if it.ID != id {
					kept = append(kept, it)
				}
			}
			st.Items = kept
		},
		func(ctx context.Context) (func(*State), error) {
			return nil, c.store.DeleteItem(ctx, id)
		})
}
