package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	Image            string       `json:"image"`
	AdditionalImages []string     `json:"additionalImages"`
	Brand            string       `json:"brand"`
	Category         string       `json:"category"`
	Description      string       `json:"description"`
	Rating           float64      `json:"rating"`
	NumReviews       int          `json:"numReviews"`
	Price            float64      `json:"price"`
	Stock            int          `json:"countInStock"`
	Sizes            []string     `json:"sizes"`
	Colors           []string     `json:"colors"`
	ColorImages      []ColorImage `json:"colorImages"`
	Variants         []Variant    `json:"variants"`
	CreatedBy        *uuid.UUID   `json:"createdBy,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// ColorImage maps a color option to the image shown for it
type ColorImage struct {
	Color    string `json:"color"`
	ImageURL string `json:"imageUrl"`
}

// Variant is a named product option such as a color swatch
type Variant struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Hex  string `json:"hex,omitempty"`
}

// ProductSummary is the slice of a product shown next to a cart line
type ProductSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Price float64   `json:"price"`
	Stock int       `json:"countInStock"`
}

// Summary returns the display summary of the product
func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:    p.ID,
		Name:  p.Name,
		Image: p.Image,
		Price: p.Price,
		Stock: p.Stock,
	}
}

// Normalize replaces nil lists with empty ones so they serialize as []
func (p *Product) Normalize() {
	if p.AdditionalImages == nil {
		p.AdditionalImages = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.ColorImages == nil {
		p.ColorImages = []ColorImage{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
}
