package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/shopify"
	"github.com/fjod/go_storefront/internal/view"
)

const bestsellersCount = 8

type CatalogService interface {
	Collection(ctx context.Context, handle string, filters []shopify.ProductFilter) (*domain.Collection, error)
	Product(ctx context.Context, handle string) (*domain.Product, error)
	Featured(ctx context.Context, n int) ([]domain.Product, error)
}

// SavedLookup marks products the visitor has wishlisted.
type SavedLookup interface {
	SavedIDs(ctx context.Context, sessionID string) map[string]bool
	Contains(ctx context.Context, sessionID, productID string) (bool, error)
}

type CatalogHandler struct {
	pages
	catalogService CatalogService
	wishlist       SavedLookup
	timeout        time.Duration
}

func NewCatalogHandler(catalogService CatalogService, wishlist SavedLookup, carts CartReader, views Renderer, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		pages:          pages{views: views, carts: carts},
		catalogService: catalogService,
		wishlist:       wishlist,
		timeout:        timeout,
	}
}

type CollectionResponse struct {
	Collection     *domain.Collection      `json:"collection"`
	AppliedFilters []shopify.ProductFilter `json:"applied_filters"`
}

// Home renders the hero and the bestsellers rail. The rail is left out when
// the products cannot be loaded.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var data view.HomeData
	products, err := h.catalogService.Featured(ctx, bestsellersCount)
	if err != nil {
		logger.FromContext(ctx).Warn("bestsellers unavailable", zap.Error(err))
	} else {
		data.Bestsellers = view.NewProductCards(products, h.wishlist.SavedIDs(ctx, sessionID(ctx)))
	}

	h.render(w, r, http.StatusOK, "home", h.newPage(ctx, r, "", data))
}

func (h *CatalogHandler) Collection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	// The price form always submits both bounds; untouched ones are dropped.
	if normalized, changed := catalog.NormalizePrice(q); changed {
		redirect(w, r, catalog.Link(r.URL.Path, normalized))
		return
	}

	filters := catalog.FiltersFromQuery(q)
	collection, err := h.catalogService.Collection(ctx, chi.URLParam(r, "handle"), filters)
	if errors.Is(err, service.ErrNotFound) {
		h.renderNotFound(w, r, "Collection Not Found")
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := view.CollectionData{
		Handle:     chi.URLParam(r, "handle"),
		Collection: collection,
		Cards:      view.NewProductCards(collection.Products, h.wishlist.SavedIDs(ctx, sessionID(ctx))),
		Sidebar:    catalog.BuildSidebar(r.URL.Path, collection.Filters, linkQuery(q)),
		Filtered:   len(filters) > 0,
		ClearURL:   catalog.Link(r.URL.Path, withoutFilters(linkQuery(q))),
	}
	h.render(w, r, http.StatusOK, "collection", h.newPage(ctx, r, collection.Title, data))
}

func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalogService.Product(ctx, chi.URLParam(r, "handle"))
	if errors.Is(err, service.ErrNotFound) {
		h.renderNotFound(w, r, "Product Not Found")
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	q := r.URL.Query()
	selected := catalog.SelectVariant(product, q.Get("variant"))
	gallery := catalog.BuildGallery(product, selected, q.Get("image"))

	saved, err := h.wishlist.Contains(ctx, sessionID(ctx), product.ID)
	if err != nil {
		logger.FromContext(ctx).Warn("wishlist lookup failed", zap.Error(err))
	}

	data := view.ProductData{
		Product:  product,
		Selected: selected,
		Gallery:  gallery,
		Thumbs:   thumbs(r.URL.Path, q, gallery),
		Options:  catalog.GroupOptions(product.Variants),
		Variants: variantLinks(r.URL.Path, q, product, selected),
		Saved:    saved,
	}
	h.render(w, r, http.StatusOK, "product", h.newPage(ctx, r, product.Title, data))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalogService.Product(ctx, chi.URLParam(r, "handle"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GetCollection returns the collection for the filters in the query, along
// with the ProductFilter inputs they were mapped to.
func (h *CatalogHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filters := catalog.FiltersFromQuery(r.URL.Query())
	collection, err := h.catalogService.Collection(ctx, chi.URLParam(r, "handle"), filters)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if filters == nil {
		filters = []shopify.ProductFilter{}
	}
	respondJSON(w, http.StatusOK, CollectionResponse{
		Collection:     collection,
		AppliedFilters: filters,
	})
}

func thumbs(path string, q url.Values, g catalog.Gallery) []view.Thumb {
	out := make([]view.Thumb, 0, len(g.Thumbnails))
	for i, img := range g.Thumbnails {
		link := linkQuery(q)
		link.Set("image", strconv.Itoa(i))
		out = append(out, view.Thumb{
			Image:  img,
			URL:    catalog.Link(path, link),
			Active: i == g.MainIndex,
		})
	}
	return out
}

func variantLinks(path string, q url.Values, p *domain.Product, selected *domain.Variant) []view.VariantLink {
	if len(p.Variants) < 2 {
		return nil
	}
	out := make([]view.VariantLink, 0, len(p.Variants))
	for _, v := range p.Variants {
		link := linkQuery(q)
		link.Set("variant", shopify.ParseGID(v.ID))
		link.Del("image")
		out = append(out, view.VariantLink{
			Variant:  v,
			URL:      catalog.Link(path, link),
			Selected: selected != nil && v.ID == selected.ID,
		})
	}
	return out
}

func withoutFilters(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		if !strings.HasPrefix(k, catalog.ParamPrefix) {
			out[k] = v
		}
	}
	return out
}

// linkQuery copies q for building links on the same page, dropping the drawer flag.
func linkQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		if k != "cart" {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}
