package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartJSON = `{
  "id": "gid://shopify/Cart/c1",
  "checkoutUrl": "https://shop.example/checkouts/c1",
  "totalQuantity": 2,
  "cost": {
    "totalAmount": {"amount": "90.0", "currencyCode": "INR"},
    "subtotalAmount": {"amount": "90.0", "currencyCode": "INR"},
    "totalTaxAmount": null,
    "totalDutyAmount": null
  },
  "lines": {"edges": [{"node": {
    "id": "gid://shopify/CartLine/l1",
    "quantity": 2,
    "cost": {"totalAmount": {"amount": "90.0", "currencyCode": "INR"}},
    "merchandise": {
      "id": "gid://shopify/ProductVariant/v1",
      "title": "M / Black",
      "price": {"amount": "45.0", "currencyCode": "INR"},
      "product": {"title": "Essential Tee", "handle": "essential-tee", "featuredImage": {"url": "https://cdn.example/tee.jpg", "altText": null}}
    }
  }}]}
}`

func TestCreateCart(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"cartCreate":{"cart":`+cartJSON+`}}`)
	})

	cart, err := client.CreateCart(context.Background())

	require.NoError(t, err)
	assert.Contains(t, got.Query, "mutation cartCreate")
	assert.Equal(t, "IN", got.Variables["country"])
	assert.Equal(t, "gid://shopify/Cart/c1", cart.ID)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, "90.00 INR", cart.Cost.Total.String())
	assert.Nil(t, cart.Cost.Tax)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "essential-tee", cart.Lines[0].Merchandise.ProductHandle)
	require.NotNil(t, cart.Lines[0].Merchandise.Image)
	assert.Equal(t, "https://cdn.example/tee.jpg", cart.Lines[0].Merchandise.Image.URL)
}

func TestCreateCart_NoCartInPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondData(w, `{"cartCreate":{"cart":null}}`)
	})

	_, err := client.CreateCart(context.Background())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetCart_Expired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondData(w, `{"cart":null}`)
	})

	cart, err := client.GetCart(context.Background(), "gid://shopify/Cart/old")

	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestAddCartLines_SendsLines(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"cartLinesAdd":{"cart":`+cartJSON+`}}`)
	})

	_, err := client.AddCartLines(context.Background(), "gid://shopify/Cart/c1", []CartLineInput{
		{MerchandiseID: "gid://shopify/ProductVariant/v1", Quantity: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/c1", got.Variables["cartId"])
	lines := got.Variables["lines"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, "gid://shopify/ProductVariant/v1", line["merchandiseId"])
	assert.Equal(t, float64(2), line["quantity"])
}

func TestRemoveAndUpdateCartLines(t *testing.T) {
	var queries []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries = append(queries, req.Query)
		if strings.Contains(req.Query, "cartLinesRemove(") {
			assert.Equal(t, []any{"gid://shopify/CartLine/l1"}, req.Variables["lineIds"])
			respondData(w, `{"cartLinesRemove":{"cart":`+cartJSON+`}}`)
			return
		}
		respondData(w, `{"cartLinesUpdate":{"cart":`+cartJSON+`}}`)
	})

	_, err := client.RemoveCartLines(context.Background(), "gid://shopify/Cart/c1", []string{"gid://shopify/CartLine/l1"})
	require.NoError(t, err)
	_, err = client.UpdateCartLines(context.Background(), "gid://shopify/Cart/c1", []CartLineUpdateInput{{ID: "gid://shopify/CartLine/l1", Quantity: 3}})
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Contains(t, queries[1], "mutation cartLinesUpdate")
}

func TestCreateAccessToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			respondData(w, `{"customerAccessTokenCreate":{"customerAccessToken":{"accessToken":"abc","expiresAt":"2030-01-02T03:04:05Z"},"customerUserErrors":[]}}`)
		})

		token, userErrs, err := client.CreateAccessToken(context.Background(), "a@b.c", "secret123")

		require.NoError(t, err)
		assert.Empty(t, userErrs)
		assert.Equal(t, "abc", token.Token)
		assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), token.ExpiresAt)
	})

	t.Run("user errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			respondData(w, `{"customerAccessTokenCreate":{"customerAccessToken":null,"customerUserErrors":[{"code":"UNIDENTIFIED_CUSTOMER","field":["input"],"message":"Unidentified customer"}]}}`)
		})

		token, userErrs, err := client.CreateAccessToken(context.Background(), "a@b.c", "wrong")

		require.NoError(t, err)
		assert.Nil(t, token)
		require.Len(t, userErrs, 1)
		assert.Equal(t, "Unidentified customer", userErrs[0].Message)
		assert.Equal(t, []string{"input"}, userErrs[0].Field)
	})
}

func TestCreateCustomer_SendsInput(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"customerCreate":{"customer":{"id":"gid://shopify/Customer/1"},"customerUserErrors":[]}}`)
	})

	userErrs, err := client.CreateCustomer(context.Background(), CustomerCreateInput{
		Email: "a@b.c", Password: "secret123", FirstName: "Ada", LastName: "Lovelace",
	})

	require.NoError(t, err)
	assert.Empty(t, userErrs)
	input := got.Variables["input"].(map[string]any)
	assert.Equal(t, "Ada", input["firstName"])
	assert.Equal(t, "Lovelace", input["lastName"])
	_, hasCountry := got.Variables["country"]
	assert.False(t, hasCountry)
}

func TestGetCustomer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondData(w, `{"customer":{
			"id":"gid://shopify/Customer/1","firstName":"Ada","lastName":"Lovelace","email":"a@b.c","phone":null,
			"defaultAddress":{"id":"gid://shopify/MailingAddress/9","address1":"1 Main St","address2":null,"city":"Pune","province":"MH","zip":"411001","country":"India"},
			"orders":{"edges":[{"node":{"id":"gid://shopify/Order/5","orderNumber":1001,"processedAt":"2024-03-01T10:00:00Z",
				"totalPrice":{"amount":"120.5","currencyCode":"INR"},"financialStatus":"PAID","fulfillmentStatus":"FULFILLED"}}]}
		}}`)
	})

	customer, err := client.GetCustomer(context.Background(), "abc")

	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Ada", customer.FirstName)
	require.NotNil(t, customer.DefaultAddress)
	assert.Equal(t, "Pune", customer.DefaultAddress.City)
	require.Len(t, customer.Orders, 1)
	assert.Equal(t, 1001, customer.Orders[0].OrderNumber)
	assert.Equal(t, "120.50 INR", customer.Orders[0].TotalPrice.String())
}

func TestGetCustomer_InvalidToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondData(w, `{"customer":null}`)
	})

	customer, err := client.GetCustomer(context.Background(), "expired")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestGetProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondData(w, `{"product":{
			"id":"gid://shopify/Product/1","title":"Essential Tee","handle":"essential-tee","descriptionHtml":"<p>Soft</p>",
			"details":{"value":"100% cotton"},"delivery":null,"returns":{"value":"30 days"},
			"priceRange":{"minVariantPrice":{"amount":"45.0","currencyCode":"INR"}},
			"images":{"edges":[{"node":{"url":"https://cdn.example/1.jpg","altText":"front"}}]},
			"variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/11","title":"M","availableForSale":true,"quantityAvailable":3,
				"image":null,"price":{"amount":"45.0","currencyCode":"INR"},"selectedOptions":[{"name":"Size","value":"M"}]}}]}
		}}`)
	})

	product, err := client.GetProduct(context.Background(), "essential-tee")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "100% cotton", product.Details)
	assert.Equal(t, "", product.Delivery)
	assert.Equal(t, "30 days", product.Returns)
	require.Len(t, product.Images, 1)
	assert.Equal(t, "front", product.Images[0].AltText)
	require.Len(t, product.Variants, 1)
	assert.Nil(t, product.Variants[0].Image)
	require.NotNil(t, product.Variants[0].QuantityAvailable)
	assert.Equal(t, 3, *product.Variants[0].QuantityAvailable)
	assert.Equal(t, "M", product.Variants[0].OptionValue("Size"))
}

func TestGetCollection_SendsFiltersAndDecodesFacets(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"collection":{"id":"gid://shopify/Collection/1","title":"Men","description":"",
			"products":{
				"filters":[{"id":"filter.v.option.size","label":"Size","type":"LIST","values":[
					{"id":"filter.v.option.size.m","label":"M","count":4,"input":"{\"variantOption\":{\"name\":\"size\",\"value\":\"M\"}}"}]}],
				"edges":[{"node":{"id":"gid://shopify/Product/1","title":"Tee","handle":"tee",
					"priceRange":{"minVariantPrice":{"amount":"10","currencyCode":"INR"}},
					"images":{"edges":[]},"variants":{"edges":[]}}}]
			}}}`)
	})

	size := &VariantOption{Name: "size", Value: "M"}
	collection, err := client.GetCollection(context.Background(), "men", []ProductFilter{{VariantOption: size}})

	require.NoError(t, err)
	require.NotNil(t, collection)
	assert.Equal(t, "Men", collection.Title)
	require.Len(t, collection.Products, 1)
	assert.Equal(t, "tee", collection.Products[0].Handle)
	require.Len(t, collection.Filters, 1)
	assert.Equal(t, 4, collection.Filters[0].Values[0].Count)

	filters := got.Variables["filters"].([]any)
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]any{"variantOption": map[string]any{"name": "size", "value": "M"}}, filters[0])
}

func TestGetCollection_NilFiltersSentAsEmptyList(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"collection":null}`)
	})

	collection, err := client.GetCollection(context.Background(), "missing", nil)

	require.NoError(t, err)
	assert.Nil(t, collection)
	assert.Equal(t, []any{}, got.Variables["filters"])
}

func TestListProducts(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondData(w, `{"products":{"edges":[
			{"node":{"id":"p1","title":"A","handle":"a","priceRange":{"minVariantPrice":{"amount":"1","currencyCode":"INR"}},"images":{"edges":[]},"variants":{"edges":[]}}},
			{"node":{"id":"p2","title":"B","handle":"b","priceRange":{"minVariantPrice":{"amount":"2","currencyCode":"INR"}},"images":{"edges":[]},"variants":{"edges":[]}}}
		]}}`)
	})

	products, err := client.ListProducts(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, float64(20), got.Variables["first"])
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[1].Handle)
}
