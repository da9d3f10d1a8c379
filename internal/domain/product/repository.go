package product

import "context"

// Catalog defines read access to the tracked product catalog
type Catalog interface {
	// ListTracked returns every approved product with its aliases folded
	// into search terms and its company ticker attached
	ListTracked(ctx context.Context) ([]Product, error)
}
