package domain

type Product struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Handle          string    `json:"handle"`
	DescriptionHTML string    `json:"description_html,omitempty"`
	Details         string    `json:"details,omitempty"`
	Delivery        string    `json:"delivery,omitempty"`
	Returns         string    `json:"returns,omitempty"`
	MinPrice        Money     `json:"min_price"`
	Images          []Image   `json:"images"`
	Variants        []Variant `json:"variants"`
}

type Variant struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	AvailableForSale  bool     `json:"available_for_sale"`
	QuantityAvailable *int     `json:"quantity_available,omitempty"`
	Image             *Image   `json:"image,omitempty"`
	Price             Money    `json:"price"`
	SelectedOptions   []Option `json:"selected_options"`
}

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FeaturedImage is the first product image, or nil when the product has none.
func (p *Product) FeaturedImage() *Image {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// OptionValue returns the value of the named option, or "" when the variant does not carry it.
func (v *Variant) OptionValue(name string) string {
	for _, o := range v.SelectedOptions {
		if o.Name == name {
			return o.Value
		}
	}
	return ""
}

type Collection struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Products    []Product `json:"products"`
	Filters     []Filter  `json:"filters,omitempty"`
}

// Filter is a facet the API offers for a collection's products.
type Filter struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Type   string        `json:"type"`
	Values []FilterValue `json:"values"`
}

const FilterTypePriceRange = "PRICE_RANGE"

type FilterValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
	// Input is the JSON-encoded ProductFilter that selects this value.
	Input string `json:"input"`
}
