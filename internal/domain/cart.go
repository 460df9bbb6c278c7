package domain

type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkout_url"`
	TotalQuantity int        `json:"total_quantity"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}

type CartCost struct {
	Total    Money  `json:"total"`
	Subtotal Money  `json:"subtotal"`
	Tax      *Money `json:"tax,omitempty"`
	Duty     *Money `json:"duty,omitempty"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        Money       `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
}

type Merchandise struct {
	VariantID     string `json:"variant_id"`
	Title         string `json:"title"`
	Price         Money  `json:"price"`
	ProductTitle  string `json:"product_title"`
	ProductHandle string `json:"product_handle"`
	Image         *Image `json:"image,omitempty"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Line returns the cart line with the given id, or nil.
func (c *Cart) Line(lineID string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}
