package postgres

import (
	"context"
	"database/sql"

	"snackindex/internal/domain/product"
	"snackindex/pkg/errors"
)

// Compile-time check
var _ product.Catalog = (*ProductRepository)(nil)

// ProductRepository implements product.Catalog using sqlx
type ProductRepository struct {
	db DBTX
}

// NewProductRepository creates a new product catalog repository
func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

type catalogRow struct {
	ID     int64          `db:"id"`
	Name   string         `db:"name"`
	Ticker sql.NullString `db:"ticker"`
	Alias  sql.NullString `db:"alias"`
}

// ListTracked loads every approved product, joining the parent company for
// the ticker and the alias rows for extra search terms. One product appears
// once per alias in the result set; rows are folded back together here.
func (r *ProductRepository) ListTracked(ctx context.Context) ([]product.Product, error) {
	query := `
		SELECT p.id, p.name, c.ticker, a.alias
		FROM products p
		LEFT JOIN companies c ON p.company_id = c.id
		LEFT JOIN product_aliases a ON a.product_id = p.id
		WHERE p.status = 'approved'
		ORDER BY p.id, a.alias`

	var rows []catalogRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "select product catalog")
	}

	var products []product.Product
	index := make(map[int64]int)

	for _, row := range rows {
		i, seen := index[row.ID]
		if !seen {
			index[row.ID] = len(products)
			i = len(products)
			products = append(products, product.Product{
				ID:          row.ID,
				Name:        row.Name,
				SearchTerms: []string{row.Name},
				Ticker:      row.Ticker.String,
			})
		}
		if row.Alias.Valid && row.Alias.String != "" {
			products[i].SearchTerms = append(products[i].SearchTerms, row.Alias.String)
		}
	}

	// Derive the queries once all aliases are folded in
	for i := range products {
		products[i].SocialQuery = product.BuildSocialQuery(products[i].SearchTerms)
		products[i].NewsQuery = product.BuildNewsQuery(products[i].SearchTerms)
	}

	return products, nil
}
