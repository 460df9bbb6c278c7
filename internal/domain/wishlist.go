package domain

import "time"

type WishlistItem struct {
	ProductID string    `json:"product_id"`
	Handle    string    `json:"handle"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url,omitempty"`
	Price     Money     `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

// WishlistItemFromProduct captures what the wishlist page needs to render a product card.
func WishlistItemFromProduct(p *Product) WishlistItem {
	item := WishlistItem{
		ProductID: p.ID,
		Handle:    p.Handle,
		Title:     p.Title,
		Price:     p.MinPrice,
	}
	if img := p.FeaturedImage(); img != nil {
		item.ImageURL = img.URL
	}
	return item
}
