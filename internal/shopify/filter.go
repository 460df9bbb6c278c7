package shopify

// ProductFilter is the Storefront API's ProductFilter input. Exactly one field is set per filter.
type ProductFilter struct {
	Available         *bool             `json:"available,omitempty"`
	VariantOption     *VariantOption    `json:"variantOption,omitempty"`
	TaxonomyMetafield *MetafieldFilter  `json:"taxonomyMetafield,omitempty"`
	ProductType       string            `json:"productType,omitempty"`
	ProductVendor     string            `json:"productVendor,omitempty"`
	Tag               string            `json:"tag,omitempty"`
	Price             *PriceRangeFilter `json:"price,omitempty"`
}

type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MetafieldFilter struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type PriceRangeFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}
