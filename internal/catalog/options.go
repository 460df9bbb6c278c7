package catalog

import (
	"strconv"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/shopify"
)

const (
	ColorOption    = "Color"
	SwatchLimit    = 4
	ThumbnailLimit = 4
)

type OptionGroup struct {
	Name   string
	Values []string
}

// GroupOptions collects the distinct values of every variant option, keeping
// both names and values in first-seen order.
func GroupOptions(variants []domain.Variant) []OptionGroup {
	var groups []OptionGroup
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, v := range variants {
		for _, opt := range v.SelectedOptions {
			i, ok := index[opt.Name]
			if !ok {
				i = len(groups)
				index[opt.Name] = i
				seen[opt.Name] = make(map[string]struct{})
				groups = append(groups, OptionGroup{Name: opt.Name})
			}
			if _, dup := seen[opt.Name][opt.Value]; dup {
				continue
			}
			seen[opt.Name][opt.Value] = struct{}{}
			groups[i].Values = append(groups[i].Values, opt.Value)
		}
	}
	return groups
}

type Swatch struct {
	Color    string
	ImageURL string
}

// ColorSwatches returns up to limit colors that have a variant image, the
// first image seen for a color winning, and how many more colors exist.
func ColorSwatches(p *domain.Product, limit int) ([]Swatch, int) {
	var all []Swatch
	seen := make(map[string]struct{})
	for _, v := range p.Variants {
		color := v.OptionValue(ColorOption)
		if color == "" || v.Image == nil {
			continue
		}
		if _, ok := seen[color]; ok {
			continue
		}
		seen[color] = struct{}{}
		all = append(all, Swatch{Color: color, ImageURL: v.Image.URL})
	}

	if len(all) <= limit {
		return all, 0
	}
	return all[:limit], len(all) - limit
}

// SelectVariant picks the variant whose numeric id matches param, falling back
// to the first variant. It returns nil for a product without variants.
func SelectVariant(p *domain.Product, param string) *domain.Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	if param != "" {
		want := shopify.ParseGID(param)
		for i := range p.Variants {
			if shopify.ParseGID(p.Variants[i].ID) == want {
				return &p.Variants[i]
			}
		}
	}
	return &p.Variants[0]
}

type Gallery struct {
	Main       *domain.Image
	MainIndex  int
	Thumbnails []domain.Image
}

// BuildGallery chooses the main image: the image at the index in imageParam,
// else the selected variant's image, else the first product image.
func BuildGallery(p *domain.Product, selected *domain.Variant, imageParam string) Gallery {
	g := Gallery{MainIndex: -1}
	if n := len(p.Images); n > 0 {
		g.Thumbnails = p.Images[:min(n, ThumbnailLimit)]
	}

	if i, err := strconv.Atoi(imageParam); err == nil && i >= 0 && i < len(p.Images) {
		g.Main, g.MainIndex = &p.Images[i], i
		return g
	}
	if selected != nil && selected.Image != nil {
		g.Main = selected.Image
		for i := range p.Images {
			if p.Images[i].URL == selected.Image.URL {
				g.MainIndex = i
				break
			}
		}
		return g
	}
	if len(p.Images) > 0 {
		g.Main, g.MainIndex = &p.Images[0], 0
	}
	return g
}
