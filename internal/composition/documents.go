package composition

// Documents sent to the subgraphs. Field selections mirror what the unified
// graph exposes so no second round trip is ever needed for a product or an
// image.
const (
	searchProductsQuery = `query($search: String!) {
  searchActiveProductsByName(search: $search) { id name price status }
}`
	productsByIDQuery = `{
  getActiveProductsSortedById { id name price status }
}`
	productsByPriceQuery = `query($order: String) {
  getActiveProductsSortedByPrice(order: $order) { id name price status }
}`
	createProductMutation = `mutation($inp: ProductInput!) {
  createProduct(inp: $inp) { id name price status }
}`
	updateProductMutation = `mutation($productId: Int!, $input: ProductInput!) {
  updateProduct(productId: $productId, input: $input) { id name price status }
}`
	deleteProductMutation = `mutation($productId: Int!) {
  deleteProduct(productId: $productId)
}`

	getImageQuery = `query($imageId: Int!) {
  getImage(imageId: $imageId) { id url priority productId }
}`
	allImagesQuery = `{
  getAllImages { id url priority productId }
}`
	createImageMutation = `mutation($inp: ImageInput!) {
  createImage(inp: $inp) { id url priority productId }
}`
	updateImageMutation = `mutation($imageId: Int!, $updates: ImageUpdateInput!) {
  updateImage(imageId: $imageId, updates: $updates) { id url priority productId }
}`
	deleteImageMutation = `mutation($imageId: Int!) {
  deleteImage(imageId: $imageId)
}`

	productSelection       = `... on Product { id name price status }`
	productImagesSelection = `... on Product { id images { id url priority productId } }`
)
