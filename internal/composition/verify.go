package composition

import (
	"context"
	"fmt"
	"regexp"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
)

var (
	productKey    = regexp.MustCompile(`type\s+Product\s+@key\(fields:\s*"id"\)`)
	productImages = regexp.MustCompile(`images:\s*\[Image!\]!`)
)

// VerifySubgraphs fetches both subgraph SDLs and checks the contract the
// gateway relies on: Product is keyed by id on both sides and the images
// subgraph contributes Product.images.
func VerifySubgraphs(ctx context.Context, products, images *federation.Client) error {
	productsSDL, err := products.SDL(ctx)
	if err != nil {
		return err
	}
	if !productKey.MatchString(productsSDL) {
		return fmt.Errorf("%s subgraph does not declare Product keyed by id", products.Name())
	}

	imagesSDL, err := images.SDL(ctx)
	if err != nil {
		return err
	}
	if !productKey.MatchString(imagesSDL) || !productImages.MatchString(imagesSDL) {
		return fmt.Errorf("%s subgraph does not extend Product with images", images.Name())
	}

	return nil
}
