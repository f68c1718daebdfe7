package models

import "time"

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
}

type Item struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string  `gorm:"not null"                 json:"name"`
	Price      float64 `gorm:"not null"                 json:"price"`
	ImageURI   string  `json:"image_uri,omitempty"`
	CategoryID int64   `gorm:"index;not null"           json:"category_id"`

	// Joined for display, not stored.
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`
}

// DeletedItem is an item parked in the recently-deleted holding area. It keeps
// the item's original id so a restore puts back the same record.
type DeletedItem struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	Name       string  `gorm:"not null"   json:"name"`
	Price      float64 `gorm:"not null"   json:"price"`
	ImageURI   string  `json:"image_uri,omitempty"`
	CategoryID int64   `json:"category_id"`
	DeletedAt  int64   `gorm:"not null"   json:"deleted_at"`
}

type TransactionLine struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Transaction struct {
	ID      string            `json:"id"`
	Date    time.Time         `json:"date"`
	Lines   []TransactionLine `json:"lines"`
	Total   float64           `json:"total"`
	Payment float64           `json:"payment"`
	Change  float64           `json:"change"`
}

type Settings struct {
	ColorScheme string `json:"color_scheme"`
}
