package cart

import (
	"context"

	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
)

// ProductLookup resolves the catalog entry a line is priced from.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type cartKeyer interface {
	CartKey(clientKey string) string
}
