package domain

import "time"

type TeaCategory string

const (
	CategoryBlackTea       TeaCategory = "black_tea"
	CategoryGreenTea       TeaCategory = "green_tea"
	CategoryHerbalTea      TeaCategory = "herbal_tea"
	CategoryOolongTea      TeaCategory = "oolong_tea"
	CategoryWhiteTea       TeaCategory = "white_tea"
	CategorySpecialtyBlend TeaCategory = "specialty_blend"
)

type Product struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Price          float64     `json:"price"`
	Description    string      `json:"description"`
	Content        string      `json:"content"`
	ImageURL       string      `json:"image_url"`
	Category       TeaCategory `json:"category"`
	InventoryCount int         `json:"inventory_count"`
	IsAvailable    bool        `json:"is_available"`
	WeightGrams    int         `json:"weight_grams"`
	OriginCountry  string      `json:"origin_country,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}
