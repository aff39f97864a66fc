package domain

import "strings"

// TimeLayout is fixed width so stored timestamps sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "g"
	UnitLitre Unit = "l"
	UnitMl    Unit = "ml"
	UnitPiece Unit = "piece"
	UnitDozen Unit = "dozen"
	UnitPack  Unit = "pack"
)

var units = []Unit{UnitKg, UnitGram, UnitLitre, UnitMl, UnitPiece, UnitDozen, UnitPack}

// ParseUnit accepts the unit names case-insensitively.
func ParseUnit(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range units {
		if string(u) == s {
			return u, true
		}
	}
	return "", false
}

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
	Active      bool   `db:"is_active" json:"isActive"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Product struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	Price         float64   `db:"price" json:"price"`
	OriginalPrice float64   `db:"original_price" json:"originalPrice"`
	CategoryID    string    `db:"category_id" json:"categoryId"`
	Image         string    `db:"image" json:"image"`
	Stock         int       `db:"stock" json:"stock"`
	Unit          Unit      `db:"unit" json:"unit"`
	Discount      float64   `db:"discount" json:"discount"`
	Featured      bool      `db:"is_featured" json:"isFeatured"`
	CreatedAt     string    `db:"created_at" json:"createdAt"`
	Category      *Category `db:"-" json:"category,omitempty"`
}
