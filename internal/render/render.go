// Package render turns catalog products into view descriptions and markup.
// Nothing here performs I/O beyond writing to the supplied writer.
package render

import (
	"math"
	"strconv"

	"github.com/imrishuroy/go-storefront/internal/catalog"
)

// Call-to-action labels.
const (
	LabelAddToCart = "Add To Cart"
	LabelGoToCart  = "Go To Cart"
)

// Card is the view description of one product tile.
type Card struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Thumbnail       string   `json:"thumbnail"`
	Images          []string `json:"images,omitempty"`
	Rating          float64  `json:"rating"`
	Price           string   `json:"price"`
	DiscountedPrice string   `json:"discountedPrice"`
	Discount        string   `json:"discount"`
	InCart          bool     `json:"inCart"`
	ActionLabel     string   `json:"actionLabel"`
}

// PageButton is one pagination control; Value is the zero-based page index.
type PageButton struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Products maps products, with Selected already applied, to cards.
func Products(products []catalog.Product) []Card {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, Product(p))
	}
	return cards
}

// Product maps a single product to its card.
func Product(p catalog.Product) Card {
	return Card{
		ID:              p.ID,
		Title:           p.Title,
		Thumbnail:       p.Thumbnail,
		Images:          p.Images,
		Rating:          p.Rating,
		Price:           formatNumber(p.Price),
		DiscountedPrice: FormatPrice(p.DiscountedPrice()),
		Discount:        formatNumber(p.DiscountPercentage),
		InCart:          p.Selected,
		ActionLabel:     ActionLabel(p.Selected),
	}
}

// ActionLabel is the button text for a product with the given cart membership.
func ActionLabel(inCart bool) string {
	if inCart {
		return LabelGoToCart
	}
	return LabelAddToCart
}

// FormatPrice renders v with exactly two decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Pagination builds ceil(total/limit) page buttons labelled from 1.
func Pagination(total, limit int) []PageButton {
	if total <= 0 || limit <= 0 {
		return nil
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	buttons := make([]PageButton, pages)
	for i := range buttons {
		buttons[i] = PageButton{Label: strconv.Itoa(i + 1), Value: i}
	}
	return buttons
}

// formatNumber prints the shortest representation, as the listing shows list price and discount.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
