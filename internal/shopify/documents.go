package shopify

const moneyFields = `amount
      currencyCode`

const cartFragment = `
fragment cart on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    totalAmount { ` + moneyFields + ` }
    subtotalAmount { ` + moneyFields + ` }
    totalTaxAmount { ` + moneyFields + ` }
    totalDutyAmount { ` + moneyFields + ` }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        cost {
          totalAmount { ` + moneyFields + ` }
        }
        merchandise {
          ... on ProductVariant {
            id
            title
            price { ` + moneyFields + ` }
            product {
              title
              handle
              featuredImage {
                url
                altText
              }
            }
          }
        }
      }
    }
  }
}
`

const productCardFields = `
  id
  title
  handle
  priceRange {
    minVariantPrice { ` + moneyFields + ` }
  }
  images(first: 1) {
    edges {
      node {
        url
        altText
      }
    }
  }
  variants(first: 20) {
    edges {
      node {
        id
        title
        image {
          url
          altText
        }
        price { ` + moneyFields + ` }
        selectedOptions {
          name
          value
        }
      }
    }
  }
`

const cartCreateMutation = `
mutation cartCreate($country: CountryCode) @inContext(country: $country) {
  cartCreate {
    cart {
      ...cart
    }
  }
}
` + cartFragment

const cartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!, $country: CountryCode) @inContext(country: $country) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {
      ...cart
    }
  }
}
` + cartFragment

const cartLinesRemoveMutation = `
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!, $country: CountryCode) @inContext(country: $country) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {
      ...cart
    }
  }
}
` + cartFragment

const cartLinesUpdateMutation = `
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!, $country: CountryCode) @inContext(country: $country) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {
      ...cart
    }
  }
}
` + cartFragment

const cartQuery = `
query cart($cartId: ID!, $country: CountryCode) @inContext(country: $country) {
  cart(id: $cartId) {
    ...cart
  }
}
` + cartFragment

const customerUserErrorFields = `
    customerUserErrors {
      code
      field
      message
    }
`

const customerCreateMutation = `
mutation customerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer {
      id
      email
      firstName
      lastName
    }` + customerUserErrorFields + `
  }
}
`

const customerAccessTokenCreateMutation = `
mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken {
      accessToken
      expiresAt
    }` + customerUserErrorFields + `
  }
}
`

const customerAddressUpdateMutation = `
mutation customerAddressUpdate($customerAccessToken: String!, $id: ID!, $address: MailingAddressInput!) {
  customerAddressUpdate(customerAccessToken: $customerAccessToken, id: $id, address: $address) {
    customerAddress {
      id
    }` + customerUserErrorFields + `
  }
}
`

const customerQuery = `
query customer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    id
    firstName
    lastName
    email
    phone
    defaultAddress {
      id
      address1
      address2
      city
      province
      zip
      country
    }
    orders(first: 10) {
      edges {
        node {
          id
          orderNumber
          processedAt
          totalPrice { ` + moneyFields + ` }
          financialStatus
          fulfillmentStatus
        }
      }
    }
  }
}
`

const productQuery = `
query product($handle: String!, $country: CountryCode) @inContext(country: $country) {
  product(handle: $handle) {
    id
    title
    handle
    descriptionHtml
    details: metafield(namespace: "custom", key: "details") {
      value
    }
    delivery: metafield(namespace: "custom", key: "delivery") {
      value
    }
    returns: metafield(namespace: "custom", key: "returns") {
      value
    }
    priceRange {
      minVariantPrice { ` + moneyFields + ` }
    }
    images(first: 20) {
      edges {
        node {
          url
          altText
        }
      }
    }
    variants(first: 50) {
      edges {
        node {
          id
          title
          availableForSale
          quantityAvailable
          image {
            url
            altText
          }
          price { ` + moneyFields + ` }
          selectedOptions {
            name
            value
          }
        }
      }
    }
  }
}
`

const collectionQuery = `
query collection($handle: String!, $filters: [ProductFilter!], $country: CountryCode) @inContext(country: $country) {
  collection(handle: $handle) {
    id
    title
    description
    products(first: 20, filters: $filters) {
      filters {
        id
        label
        type
        values {
          id
          label
          count
          input
        }
      }
      edges {
        node {` + productCardFields + `}
      }
    }
  }
}
`

const productsQuery = `
query products($first: Int!, $country: CountryCode) @inContext(country: $country) {
  products(first: $first) {
    edges {
      node {` + productCardFields + `}
    }
  }
}
`
