package catalog

import (
	"net/url"
	"sort"

	"github.com/fjod/go_storefront/internal/domain"
)

type SidebarGroup struct {
	ID           string
	Label        string
	IsPriceRange bool
	Values       []SidebarValue

	// Price range groups only.
	PriceMin     float64
	PriceMax     float64
	PriceFloor   float64
	PriceCeiling float64
	// Hidden carries the other selected parameters so the price form keeps them.
	Hidden []Param
}

type SidebarValue struct {
	Label   string
	Count   int
	Checked bool
	// URL toggles the value. Empty when the value's input could not be mapped.
	URL string
}

type Param struct {
	Key   string
	Value string
}

// BuildSidebar turns the facets of a collection into the filter sidebar for
// the page at path with the current query q.
func BuildSidebar(path string, filters []domain.Filter, q url.Values) []SidebarGroup {
	groups := make([]SidebarGroup, 0, len(filters))
	for _, f := range filters {
		group := SidebarGroup{ID: f.ID, Label: f.Label}

		if f.Type == domain.FilterTypePriceRange {
			group.IsPriceRange = true
			group.PriceMin, group.PriceMax = PriceRange(q)
			group.PriceFloor, group.PriceCeiling = PriceFloor, PriceCeiling
			group.Hidden = hiddenParams(q)
			groups = append(groups, group)
			continue
		}

		for _, v := range f.Values {
			value := SidebarValue{Label: v.Label, Count: v.Count}
			if key, paramValue, ok := ParamFromInput(v.Input); ok {
				value.Checked = contains(q[key], paramValue)
				value.URL = Link(path, ToggleFilter(q, key, paramValue, !value.Checked))
			}
			group.Values = append(group.Values, value)
		}
		groups = append(groups, group)
	}
	return groups
}

// Link joins path and the encoded query.
func Link(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func hiddenParams(q url.Values) []Param {
	keys := make([]string, 0, len(q))
	for key := range q {
		if key != ParamPriceMin && key != ParamPriceMax {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var out []Param
	for _, key := range keys {
		for _, v := range q[key] {
			out = append(out, Param{Key: key, Value: v})
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
