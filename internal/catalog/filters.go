// Package catalog translates between collection URL query parameters and the
// Storefront API's ProductFilter input, and shapes products for display.
package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fjod/go_storefront/internal/shopify"
)

const (
	ParamPrefix       = "filter."
	OptionPrefix      = "filter.v.option."
	MetafieldPrefix   = "filter.p.m."
	ParamAvailability = "filter.v.availability"
	ParamProductType  = "filter.p.product_type"
	ParamVendor       = "filter.p.vendor"
	ParamTag          = "filter.p.tag"
	ParamPriceMin     = "filter.v.price.gte"
	ParamPriceMax     = "filter.v.price.lte"
)

// Bounds of the price slider. A range touching a bound is not a filter.
const (
	PriceFloor   = 0
	PriceCeiling = 10000
)

// FiltersFromQuery builds the collection filters selected in q. Unknown or
// malformed parameters are skipped. Filters come out sorted by parameter key,
// repeated values in URL order; both price bounds share a single filter.
func FiltersFromQuery(q url.Values) []shopify.ProductFilter {
	keys := make([]string, 0, len(q))
	for key := range q {
		if strings.HasPrefix(key, ParamPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var (
		out   []shopify.ProductFilter
		price *shopify.PriceRangeFilter
	)
	for _, key := range keys {
		if key == ParamPriceMin || key == ParamPriceMax {
			bound, ok := parsePrice(q.Get(key))
			if !ok {
				continue
			}
			if price == nil {
				price = &shopify.PriceRangeFilter{}
				out = append(out, shopify.ProductFilter{Price: price})
			}
			if key == ParamPriceMin {
				price.Min = &bound
			} else {
				price.Max = &bound
			}
			continue
		}

		for _, value := range q[key] {
			if value == "" {
				continue
			}
			if f, ok := filterFor(key, value); ok {
				out = append(out, f)
			}
		}
	}
	return out
}

func filterFor(key, value string) (shopify.ProductFilter, bool) {
	switch {
	case strings.HasPrefix(key, OptionPrefix):
		name := strings.TrimPrefix(key, OptionPrefix)
		if name == "" {
			return shopify.ProductFilter{}, false
		}
		return shopify.ProductFilter{VariantOption: &shopify.VariantOption{Name: name, Value: value}}, true

	case strings.HasPrefix(key, MetafieldPrefix):
		namespace, mfKey, found := strings.Cut(strings.TrimPrefix(key, MetafieldPrefix), ".")
		if !found || namespace == "" || mfKey == "" {
			return shopify.ProductFilter{}, false
		}
		return shopify.ProductFilter{TaxonomyMetafield: &shopify.MetafieldFilter{
			Namespace: namespace,
			Key:       mfKey,
			Value:     value,
		}}, true

	case key == ParamAvailability:
		var available bool
		switch value {
		case "1":
			available = true
		case "0":
			available = false
		default:
			return shopify.ProductFilter{}, false
		}
		return shopify.ProductFilter{Available: &available}, true

	case key == ParamProductType:
		return shopify.ProductFilter{ProductType: value}, true
	case key == ParamVendor:
		return shopify.ProductFilter{ProductVendor: value}, true
	case key == ParamTag:
		return shopify.ProductFilter{Tag: value}, true
	}
	return shopify.ProductFilter{}, false
}

func parsePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParamFromInput maps a filter value's JSON input back to the URL parameter
// that selects it. Price ranges have no single-value parameter and report false.
func ParamFromInput(input string) (key, value string, ok bool) {
	if !gjson.Valid(input) {
		return "", "", false
	}
	parsed := gjson.Parse(input)

	if opt := parsed.Get("variantOption"); opt.Exists() {
		name := opt.Get("name").String()
		if name == "" {
			return "", "", false
		}
		return OptionPrefix + strings.ToLower(name), opt.Get("value").String(), true
	}
	if mf := parsed.Get("taxonomyMetafield"); mf.Exists() {
		namespace, mfKey := mf.Get("namespace").String(), mf.Get("key").String()
		if namespace == "" || mfKey == "" {
			return "", "", false
		}
		return MetafieldPrefix + namespace + "." + mfKey, mf.Get("value").String(), true
	}
	if available := parsed.Get("available"); available.Exists() {
		if available.Bool() {
			return ParamAvailability, "1", true
		}
		return ParamAvailability, "0", true
	}
	if v := parsed.Get("productType").String(); v != "" {
		return ParamProductType, v, true
	}
	if v := parsed.Get("productVendor").String(); v != "" {
		return ParamVendor, v, true
	}
	if v := parsed.Get("tag").String(); v != "" {
		return ParamTag, v, true
	}
	return "", "", false
}

// ToggleFilter returns a copy of q with value added under key when checked,
// or with that single value removed otherwise.
func ToggleFilter(q url.Values, key, value string, checked bool) url.Values {
	out := cloneValues(q)
	current := out[key]

	if checked {
		for _, v := range current {
			if v == value {
				return out
			}
		}
		out[key] = append(current, value)
		return out
	}

	kept := make([]string, 0, len(current))
	for _, v := range current {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(out, key)
	} else {
		out[key] = kept
	}
	return out
}

// SetPriceRange returns a copy of q carrying the given price range. Bounds at
// or beyond the slider limits are dropped.
func SetPriceRange(q url.Values, minPrice, maxPrice float64) url.Values {
	out := cloneValues(q)
	if minPrice > PriceFloor {
		out.Set(ParamPriceMin, formatPrice(minPrice))
	} else {
		out.Del(ParamPriceMin)
	}
	if maxPrice < PriceCeiling {
		out.Set(ParamPriceMax, formatPrice(maxPrice))
	} else {
		out.Del(ParamPriceMax)
	}
	return out
}

// PriceRange reads the selected price range from q, defaulting to the slider bounds.
func PriceRange(q url.Values) (minPrice, maxPrice float64) {
	minPrice, maxPrice = PriceFloor, PriceCeiling
	if v, ok := parsePrice(q.Get(ParamPriceMin)); ok {
		minPrice = v
	}
	if v, ok := parsePrice(q.Get(ParamPriceMax)); ok {
		maxPrice = v
	}
	return minPrice, maxPrice
}

// NormalizePrice rewrites the price parameters the way SetPriceRange would.
// changed reports whether q differs from the normalized form, which happens
// when the price form submits its untouched bounds.
func NormalizePrice(q url.Values) (url.Values, bool) {
	if _, hasMin := q[ParamPriceMin]; !hasMin {
		if _, hasMax := q[ParamPriceMax]; !hasMax {
			return q, false
		}
	}
	minPrice, maxPrice := PriceRange(q)
	normalized := SetPriceRange(q, minPrice, maxPrice)
	return normalized, normalized.Encode() != q.Encode()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
