package postgres

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackindex/internal/testsupport"
)

// createCatalogSchema builds the catalog tables inside the test transaction.
// Temp tables shadow the real ones for the duration of the test.
func createCatalogSchema(t *testing.T, tx *sqlx.Tx) {
	t.Helper()

	ddl := `
		CREATE TEMP TABLE companies (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			ticker TEXT
		) ON COMMIT DROP;

		CREATE TEMP TABLE products (
			id BIGINT PRIMARY KEY,
			company_id BIGINT,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
		) ON COMMIT DROP;

		CREATE TEMP TABLE product_aliases (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL,
			alias TEXT NOT NULL
		) ON COMMIT DROP;`

	_, err := tx.Exec(ddl)
	require.NoError(t, err)
}

func TestProductRepository_ListTracked(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	tx := helper.Tx()
	createCatalogSchema(t, tx)

	_, err := tx.Exec(`
		INSERT INTO companies (id, name, ticker) VALUES
			(1, 'Coca-Cola', 'KO'),
			(2, 'Indie Snacks', NULL);

		INSERT INTO products (id, company_id, name, status) VALUES
			(10, 1, 'Sprite', 'approved'),
			(11, 2, 'Craft Crisps', 'approved'),
			(12, 1, 'Rejected Cola', 'pending');

		INSERT INTO product_aliases (product_id, alias) VALUES
			(10, 'Sprite Zero'),
			(10, 'Sprite Soda');`)
	require.NoError(t, err)

	repo := NewProductRepository(tx)
	products, err := repo.ListTracked(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2, "pending products are excluded")

	sprite := products[0]
	assert.Equal(t, int64(10), sprite.ID)
	assert.Equal(t, "Sprite", sprite.Name)
	assert.Equal(t, "KO", sprite.Ticker)
	assert.Equal(t, []string{"Sprite", "Sprite Soda", "Sprite Zero"}, sprite.SearchTerms)
	assert.Equal(t, `"Sprite" OR "Sprite Soda" OR "Sprite Zero"`, sprite.SocialQuery)
	assert.Equal(t,
		`("Sprite" OR "Sprite Soda" OR "Sprite Zero") NOT stock NOT shares NOT earnings NOT nasdaq NOT nyse`,
		sprite.NewsQuery)

	crisps := products[1]
	assert.Equal(t, int64(11), crisps.ID)
	assert.Equal(t, "", crisps.Ticker, "missing company ticker folds to empty")
	assert.Equal(t, []string{"Craft Crisps"}, crisps.SearchTerms)
}

func TestProductRepository_ListTracked_Empty(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	tx := helper.Tx()
	createCatalogSchema(t, tx)

	repo := NewProductRepository(tx)
	products, err := repo.ListTracked(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
