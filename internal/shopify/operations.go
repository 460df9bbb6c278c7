package shopify

import (
	"context"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

type CartLineUpdateInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type CustomerCreateInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type customerAccessTokenCreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cartPayload struct {
	Cart *cartNode `json:"cart"`
}

func (c *Client) vars(kv ...any) map[string]any {
	v := map[string]any{"country": c.cfg.Country}
	for i := 0; i+1 < len(kv); i += 2 {
		v[kv[i].(string)] = kv[i+1]
	}
	return v
}

func cartFromPayload(op string, p cartPayload) (*domain.Cart, error) {
	if p.Cart == nil {
		return nil, fmt.Errorf("%w: %s returned no cart", ErrInvalidResponse, op)
	}
	return p.Cart.toDomain(), nil
}

// CreateCart creates an empty cart.
func (c *Client) CreateCart(ctx context.Context) (*domain.Cart, error) {
	var data struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	if err := c.Do(ctx, "cartCreate", cartCreateMutation, c.vars(), &data); err != nil {
		return nil, err
	}
	return cartFromPayload("cartCreate", data.CartCreate)
}

// GetCart returns the cart, or nil when the id is unknown or the cart has expired.
func (c *Client) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var data struct {
		Cart *cartNode `json:"cart"`
	}
	if err := c.Do(ctx, "cart", cartQuery, c.vars("cartId", cartID), &data); err != nil {
		return nil, err
	}
	return data.Cart.toDomain(), nil
}

func (c *Client) AddCartLines(ctx context.Context, cartID string, lines []CartLineInput) (*domain.Cart, error) {
	var data struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	if err := c.Do(ctx, "cartLinesAdd", cartLinesAddMutation, c.vars("cartId", cartID, "lines", lines), &data); err != nil {
		return nil, err
	}
	return cartFromPayload("cartLinesAdd", data.CartLinesAdd)
}

func (c *Client) RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error) {
	var data struct {
		CartLinesRemove cartPayload `json:"cartLinesRemove"`
	}
	if err := c.Do(ctx, "cartLinesRemove", cartLinesRemoveMutation, c.vars("cartId", cartID, "lineIds", lineIDs), &data); err != nil {
		return nil, err
	}
	return cartFromPayload("cartLinesRemove", data.CartLinesRemove)
}

func (c *Client) UpdateCartLines(ctx context.Context, cartID string, lines []CartLineUpdateInput) (*domain.Cart, error) {
	var data struct {
		CartLinesUpdate cartPayload `json:"cartLinesUpdate"`
	}
	if err := c.Do(ctx, "cartLinesUpdate", cartLinesUpdateMutation, c.vars("cartId", cartID, "lines", lines), &data); err != nil {
		return nil, err
	}
	return cartFromPayload("cartLinesUpdate", data.CartLinesUpdate)
}

// CreateCustomer registers a customer. Validation failures come back as user errors, not as err.
func (c *Client) CreateCustomer(ctx context.Context, input CustomerCreateInput) ([]domain.UserError, error) {
	var data struct {
		CustomerCreate struct {
			UserErrors []domain.UserError `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	if err := c.Do(ctx, "customerCreate", customerCreateMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	return data.CustomerCreate.UserErrors, nil
}

// CreateAccessToken logs a customer in.
func (c *Client) CreateAccessToken(ctx context.Context, email, password string) (*domain.AccessToken, []domain.UserError, error) {
	var data struct {
		CustomerAccessTokenCreate struct {
			Token *struct {
				AccessToken string `json:"accessToken"`
				ExpiresAt   string `json:"expiresAt"`
			} `json:"customerAccessToken"`
			UserErrors []domain.UserError `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	input := customerAccessTokenCreateInput{Email: email, Password: password}
	if err := c.Do(ctx, "customerAccessTokenCreate", customerAccessTokenCreateMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, nil, err
	}

	payload := data.CustomerAccessTokenCreate
	if len(payload.UserErrors) > 0 {
		return nil, payload.UserErrors, nil
	}
	if payload.Token == nil || payload.Token.AccessToken == "" {
		return nil, nil, fmt.Errorf("%w: customerAccessTokenCreate returned no token", ErrInvalidResponse)
	}

	token := &domain.AccessToken{Token: payload.Token.AccessToken}
	if err := token.ParseExpiry(payload.Token.ExpiresAt); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return token, nil, nil
}

func (c *Client) UpdateCustomerAddress(ctx context.Context, accessToken, addressID string, address domain.AddressInput) ([]domain.UserError, error) {
	var data struct {
		CustomerAddressUpdate struct {
			UserErrors []domain.UserError `json:"customerUserErrors"`
		} `json:"customerAddressUpdate"`
	}
	vars := map[string]any{
		"customerAccessToken": accessToken,
		"id":                  addressID,
		"address":             address,
	}
	if err := c.Do(ctx, "customerAddressUpdate", customerAddressUpdateMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.CustomerAddressUpdate.UserErrors, nil
}

// GetCustomer returns nil when the access token is invalid or expired.
func (c *Client) GetCustomer(ctx context.Context, accessToken string) (*domain.Customer, error) {
	var data struct {
		Customer *customerNode `json:"customer"`
	}
	if err := c.Do(ctx, "customer", customerQuery, map[string]any{"customerAccessToken": accessToken}, &data); err != nil {
		return nil, err
	}
	return data.Customer.toDomain(), nil
}

// GetProduct returns nil when no product has the handle.
func (c *Client) GetProduct(ctx context.Context, handle string) (*domain.Product, error) {
	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.Do(ctx, "product", productQuery, c.vars("handle", handle), &data); err != nil {
		return nil, err
	}
	return data.Product.toDomain(), nil
}

// GetCollection returns nil when no collection has the handle.
func (c *Client) GetCollection(ctx context.Context, handle string, filters []ProductFilter) (*domain.Collection, error) {
	if filters == nil {
		filters = []ProductFilter{}
	}
	var data struct {
		Collection *collectionNode `json:"collection"`
	}
	if err := c.Do(ctx, "collection", collectionQuery, c.vars("handle", handle, "filters", filters), &data); err != nil {
		return nil, err
	}
	return data.Collection.toDomain(), nil
}

func (c *Client) ListProducts(ctx context.Context, first int) ([]domain.Product, error) {
	var data struct {
		Products connection[productNode] `json:"products"`
	}
	if err := c.Do(ctx, "products", productsQuery, c.vars("first", first), &data); err != nil {
		return nil, err
	}
	return productsToDomain(data.Products.nodes()), nil
}
