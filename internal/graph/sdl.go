package graph

// ProductsSDL is the products subgraph contract.
const ProductsSDL = `extend schema @link(url: "https://specs.apollo.dev/federation/v2.3", import: ["@key"])

enum ProductStatus {
  ACTIVE
  INACTIVE
}

type Product @key(fields: "id") {
  id: Int!
  name: String!
  price: Float!
  status: ProductStatus!
}

input ProductInput {
  name: String!
  price: Float!
  status: ProductStatus = ACTIVE
}

type Query {
  searchActiveProductsByName(search: String!): [Product!]!
  getActiveProductsSortedById: [Product!]!
  getActiveProductsSortedByPrice(order: String = "asc"): [Product!]!
}

type Mutation {
  createProduct(inp: ProductInput!): Product
  updateProduct(productId: Int!, input: ProductInput!): Product
  deleteProduct(productId: Int!): Boolean
}
`

// ImagesSDL is the images subgraph contract. It owns Image and contributes
// images to Product without knowing any other Product field.
const ImagesSDL = `extend schema @link(url: "https://specs.apollo.dev/federation/v2.3", import: ["@key"])

type Image @key(fields: "id") {
  id: Int!
  url: String!
  priority: Int!
  productId: Int!
}

type Product @key(fields: "id") {
  id: Int!
  images: [Image!]!
}

input ImageInput {
  url: String!
  priority: Int = 100
  productId: Int!
}

input ImageUpdateInput {
  url: String
  priority: Int
  productId: Int
}

type Query {
  getImage(imageId: Int!): Image
  getAllImages: [Image!]!
}

type Mutation {
  createImage(inp: ImageInput!): Image
  updateImage(imageId: Int!, updates: ImageUpdateInput!): Image
  deleteImage(imageId: Int!): Boolean
}
`

// CatalogSDL is the unified client contract served by the gateway and the
// monolith alike.
const CatalogSDL = `enum ProductStatus {
  ACTIVE
  INACTIVE
}

type Product {
  id: Int!
  name: String!
  price: Float!
  status: ProductStatus!
  images: [Image!]
}

type Image {
  id: Int!
  url: String!
  priority: Int!
  productId: Int!
}

input ProductInput {
  name: String!
  price: Float!
  status: ProductStatus = ACTIVE
}

input ProductImageInput {
  url: String!
  priority: Int = 100
}

input ImageInput {
  url: String!
  priority: Int = 100
  productId: Int!
}

input ImageUpdateInput {
  url: String
  priority: Int
  productId: Int
}

type Query {
  searchActiveProductsByName(search: String!): [Product!]!
  getActiveProductsSortedById: [Product!]!
  getActiveProductsSortedByPrice(order: String = "asc"): [Product!]!
  getImage(imageId: Int!): Image
  getAllImages: [Image!]!
}

type Mutation {
  createProduct(inp: ProductInput!, images: [ProductImageInput!]): Product
  updateProduct(productId: Int!, input: ProductInput!): Product
  deleteProduct(productId: Int!): Boolean
  addImageToProduct(productId: Int!, imageInput: ProductImageInput!): Product
  createImage(inp: ImageInput!): Image
  updateImage(imageId: Int!, updates: ImageUpdateInput!): Image
  deleteImage(imageId: Int!): Boolean
}
`
