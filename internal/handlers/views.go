package handlers

import (
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// listingView collects what one request's listing controller displays.
type listingView struct {
	cards    []render.Card
	count    int
	pages    []render.PageButton
	labels   map[int]string
	scrolled bool
}

func (v *listingView) RenderProducts(cards []render.Card)         { v.cards = cards }
func (v *listingView) ShowCartCount(n int)                        { v.count = n }
func (v *listingView) ShowPagination(buttons []render.PageButton) { v.pages = buttons }
func (v *listingView) ScrollToTop()                               { v.scrolled = true }

func (v *listingView) MarkInCart(productID int, label string) {
	if v.labels == nil {
		v.labels = map[int]string{}
	}
	v.labels[productID] = label
}

// checkoutView collects one submission's field errors, alerts and navigation.
type checkoutView struct {
	result   validation.Result
	alerts   []string
	location string
}

func (v *checkoutView) ShowFieldErrors(res validation.Result) { v.result = res }
func (v *checkoutView) Alert(msg string)                      { v.alerts = append(v.alerts, msg) }
func (v *checkoutView) Navigate(path string)                  { v.location = path }
