package view

import (
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
)

type ProductCard struct {
	Product      *domain.Product
	Swatches     []catalog.Swatch
	MoreSwatches int
	Saved        bool
}

// NewProductCards shapes products for the grid. saved marks wishlisted product ids.
func NewProductCards(products []domain.Product, saved map[string]bool) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		swatches, more := catalog.ColorSwatches(&products[i], catalog.SwatchLimit)
		cards = append(cards, ProductCard{
			Product:      &products[i],
			Swatches:     swatches,
			MoreSwatches: more,
			Saved:        saved[products[i].ID],
		})
	}
	return cards
}

type HomeData struct {
	Bestsellers []ProductCard
}

type CollectionData struct {
	Handle     string
	Collection *domain.Collection
	Cards      []ProductCard
	Sidebar    []catalog.SidebarGroup
	Filtered   bool
	ClearURL   string
}

type ProductData struct {
	Product  *domain.Product
	Selected *domain.Variant
	Gallery  catalog.Gallery
	Thumbs   []Thumb
	Options  []catalog.OptionGroup
	Variants []VariantLink
	Saved    bool
}

type Thumb struct {
	Image  domain.Image
	URL    string
	Active bool
}

type VariantLink struct {
	Variant  domain.Variant
	URL      string
	Selected bool
}

type WishlistData struct {
	Items []domain.WishlistItem
}

// AuthData refills the login and signup forms. Passwords are never echoed.
type AuthData struct {
	FirstName string
	LastName  string
	Email     string
	Next      string
}

type AccountData struct {
	Customer *domain.Customer
	Address  domain.AddressInput
}

type ErrorData struct {
	Heading string
	Message string
}
