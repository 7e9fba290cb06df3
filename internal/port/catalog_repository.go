package port

import (
	"context"

	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
)

type CatalogRepository interface {
	// GetStock retrieves the available stock for a product
	GetStock(ctx context.Context, productID int) (domain.Stock, error)

	// GetProduct retrieves product details, Amount is left unset
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
}
