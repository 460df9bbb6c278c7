package shopify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_storefront/internal/domain"
)

// Response shapes of the Storefront API. They stay private; callers get domain types.

type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

type moneyV2 struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

func (m moneyV2) toDomain() domain.Money {
	return domain.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

func optionalMoney(m *moneyV2) *domain.Money {
	if m == nil {
		return nil
	}
	out := m.toDomain()
	return &out
}

type imageNode struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

func (i imageNode) toDomain() domain.Image {
	img := domain.Image{URL: i.URL}
	if i.AltText != nil {
		img.AltText = *i.AltText
	}
	return img
}

func optionalImage(i *imageNode) *domain.Image {
	if i == nil || i.URL == "" {
		return nil
	}
	img := i.toDomain()
	return &img
}

type cartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		TotalAmount     moneyV2  `json:"totalAmount"`
		SubtotalAmount  moneyV2  `json:"subtotalAmount"`
		TotalTaxAmount  *moneyV2 `json:"totalTaxAmount"`
		TotalDutyAmount *moneyV2 `json:"totalDutyAmount"`
	} `json:"cost"`
	Lines connection[cartLineNode] `json:"lines"`
}

type cartLineNode struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     struct {
		TotalAmount moneyV2 `json:"totalAmount"`
	} `json:"cost"`
	Merchandise struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Price   moneyV2 `json:"price"`
		Product struct {
			Title         string     `json:"title"`
			Handle        string     `json:"handle"`
			FeaturedImage *imageNode `json:"featuredImage"`
		} `json:"product"`
	} `json:"merchandise"`
}

func (c *cartNode) toDomain() *domain.Cart {
	if c == nil {
		return nil
	}
	cart := &domain.Cart{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
		Cost: domain.CartCost{
			Total:    c.Cost.TotalAmount.toDomain(),
			Subtotal: c.Cost.SubtotalAmount.toDomain(),
			Tax:      optionalMoney(c.Cost.TotalTaxAmount),
			Duty:     optionalMoney(c.Cost.TotalDutyAmount),
		},
	}
	for _, l := range c.Lines.nodes() {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:       l.ID,
			Quantity: l.Quantity,
			Cost:     l.Cost.TotalAmount.toDomain(),
			Merchandise: domain.Merchandise{
				VariantID:     l.Merchandise.ID,
				Title:         l.Merchandise.Title,
				Price:         l.Merchandise.Price.toDomain(),
				ProductTitle:  l.Merchandise.Product.Title,
				ProductHandle: l.Merchandise.Product.Handle,
				Image:         optionalImage(l.Merchandise.Product.FeaturedImage),
			},
		})
	}
	return cart
}

type metafieldNode struct {
	Value string `json:"value"`
}

func metafieldValue(m *metafieldNode) string {
	if m == nil {
		return ""
	}
	return m.Value
}

type variantNode struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	AvailableForSale  bool            `json:"availableForSale"`
	QuantityAvailable *int            `json:"quantityAvailable"`
	Image             *imageNode      `json:"image"`
	Price             moneyV2         `json:"price"`
	SelectedOptions   []domain.Option `json:"selectedOptions"`
}

type productNode struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Handle          string         `json:"handle"`
	DescriptionHTML string         `json:"descriptionHtml"`
	Details         *metafieldNode `json:"details"`
	Delivery        *metafieldNode `json:"delivery"`
	Returns         *metafieldNode `json:"returns"`
	PriceRange      struct {
		MinVariantPrice moneyV2 `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images   connection[imageNode]   `json:"images"`
	Variants connection[variantNode] `json:"variants"`
}

func (p *productNode) toDomain() *domain.Product {
	if p == nil {
		return nil
	}
	product := &domain.Product{
		ID:              p.ID,
		Title:           p.Title,
		Handle:          p.Handle,
		DescriptionHTML: p.DescriptionHTML,
		Details:         metafieldValue(p.Details),
		Delivery:        metafieldValue(p.Delivery),
		Returns:         metafieldValue(p.Returns),
		MinPrice:        p.PriceRange.MinVariantPrice.toDomain(),
		Images:          make([]domain.Image, 0, len(p.Images.Edges)),
		Variants:        make([]domain.Variant, 0, len(p.Variants.Edges)),
	}
	for _, img := range p.Images.nodes() {
		product.Images = append(product.Images, img.toDomain())
	}
	for _, v := range p.Variants.nodes() {
		product.Variants = append(product.Variants, domain.Variant{
			ID:                v.ID,
			Title:             v.Title,
			AvailableForSale:  v.AvailableForSale,
			QuantityAvailable: v.QuantityAvailable,
			Image:             optionalImage(v.Image),
			Price:             v.Price.toDomain(),
			SelectedOptions:   v.SelectedOptions,
		})
	}
	return product
}

func productsToDomain(nodes []productNode) []domain.Product {
	out := make([]domain.Product, 0, len(nodes))
	for i := range nodes {
		out = append(out, *nodes[i].toDomain())
	}
	return out
}

type collectionNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Products    struct {
		Filters []domain.Filter `json:"filters"`
		connection[productNode]
	} `json:"products"`
}

func (c *collectionNode) toDomain() *domain.Collection {
	if c == nil {
		return nil
	}
	return &domain.Collection{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Products:    productsToDomain(c.Products.nodes()),
		Filters:     c.Products.Filters,
	}
}

type customerNode struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DefaultAddress *domain.Address `json:"defaultAddress"`
	Orders         connection[struct {
		ID                string    `json:"id"`
		OrderNumber       int       `json:"orderNumber"`
		ProcessedAt       time.Time `json:"processedAt"`
		TotalPrice        moneyV2   `json:"totalPrice"`
		FinancialStatus   string    `json:"financialStatus"`
		FulfillmentStatus string    `json:"fulfillmentStatus"`
	}] `json:"orders"`
}

func (c *customerNode) toDomain() *domain.Customer {
	if c == nil {
		return nil
	}
	customer := &domain.Customer{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		DefaultAddress: c.DefaultAddress,
		Orders:         make([]domain.Order, 0, len(c.Orders.Edges)),
	}
	for _, o := range c.Orders.nodes() {
		customer.Orders = append(customer.Orders, domain.Order{
			ID:                o.ID,
			OrderNumber:       o.OrderNumber,
			ProcessedAt:       o.ProcessedAt,
			TotalPrice:        o.TotalPrice.toDomain(),
			FinancialStatus:   o.FinancialStatus,
			FulfillmentStatus: o.FulfillmentStatus,
		})
	}
	return customer
}
