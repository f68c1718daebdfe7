// Package pos holds the checkout flow: a transient cart and the capped,
// append-only transaction history.
package pos

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
	"github.com/jmdelacruz/sarisari-pos/internal/storage"
)

const HistoryFileName = "transactions.json"

var (
	ErrEmptyCart           = errors.New("empty cart")
	ErrInsufficientPayment = errors.New("insufficient payment")
)

type Line struct {
	Item     models.Item `json:"item"`
	Quantity int         `json:"quantity"`
}

// Register is the POS till. The cart lives only in memory; history is
// persisted as one snapshot and keeps the most recent historyCap records,
// newest first.
type Register struct {
	mu      sync.Mutex
	lines   []Line
	history []models.Transaction

	file       *storage.JSONStore
	historyCap int
	now        func() time.Time
}

func NewRegister(dataDir string, historyCap int) (*Register, error) {
	file, err := storage.NewJSONStore(dataDir, HistoryFileName)
	if err != nil {
		return nil, err
	}
	if historyCap <= 0 {
		historyCap = 5
	}

	r := &Register{file: file, historyCap: historyCap, now: time.Now}
	if err := file.Load(&r.history); err != nil {
		return nil, fmt.Errorf("load transaction history: %w", err)
	}
	if len(r.history) > historyCap {
		r.history = r.history[:historyCap]
	}
	return r, nil
}

// AddLine puts one unit of the item in the cart; an existing line accumulates.
func (r *Register) AddLine(item models.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].Item.ID == item.ID {
			r.lines[i].Quantity++
			return
		}
	}
	r.lines = append(r.lines, Line{Item: item, Quantity: 1})
}

// DecrementLine takes one unit off; a line at quantity 1 is removed entirely,
// so quantities never fall below 1.
func (r *Register) DecrementLine(itemID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].Item.ID != itemID {
			continue
		}
		if r.lines[i].Quantity > 1 {
			r.lines[i].Quantity--
		} else {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
		}
		return
	}
}

func (r *Register) RemoveLine(itemID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].Item.ID == itemID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return
		}
	}
}

func (r *Register) ClearCart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

func (r *Register) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines...)
}

func (r *Register) Total() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return total(r.lines)
}

func total(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Item.Price * float64(l.Quantity)
	}
	return sum
}

// Checkout turns the cart into an immutable history record. The cart is only
// cleared once the record is safely on disk; any failure leaves both the cart
// and the history exactly as they were.
func (r *Register) Checkout(payment float64) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.lines) == 0 {
		return nil, ErrEmptyCart
	}
	sum := total(r.lines)
	if payment < sum {
		return nil, fmt.Errorf("%w: total %.2f, payment %.2f", ErrInsufficientPayment, sum, payment)
	}

	tx := models.Transaction{
		ID:      uuid.NewString(),
		Date:    r.now().UTC(),
		Total:   sum,
		Payment: payment,
		Change:  payment - sum,
	}
	for _, l := range r.lines {
		tx.Lines = append(tx.Lines, models.TransactionLine{
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			Price:    l.Item.Price,
			Quantity: l.Quantity,
		})
	}

	next := make([]models.Transaction, 0, len(r.history)+1)
	next = append(next, tx)
	next = append(next, r.history...)
	if len(next) > r.historyCap {
		next = next[:r.historyCap]
	}

	if err := r.file.Save(next); err != nil {
		return nil, err
	}
	r.history = next
	r.lines = nil
	return &tx, nil
}

// History returns the recorded transactions sorted by date, newest first when
// descending is set.
func (r *Register) History(descending bool) []models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]models.Transaction(nil), r.history...)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
