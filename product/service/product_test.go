package service

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/testutil"
)

func newProductService(t *testing.T) (*ProductService, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	return NewProductService(gateway.New(backend.URL())), backend
}

func TestFindProducts(t *testing.T) {
	svc, _ := newProductService(t)

	products, err := svc.FindProducts(testutil.Context())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Milk", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, products[0].InStock())
	assert.False(t, products[2].InStock())
}

func TestFindProductByID(t *testing.T) {
	tests := []struct {
		name        string
		id          int64
		expected    string
		expectedErr bool
	}{
		{name: "given existing id should return product", id: 2, expected: "Bread"},
		{name: "given unknown id should fail", id: 42, expectedErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newProductService(t)

			product, err := svc.FindProductByID(testutil.Context(), tt.id)
			if tt.expectedErr {
				require.Error(t, err)
				message, ok := gateway.Message(err)
				assert.True(t, ok)
				assert.Equal(t, "Product not found", message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, product.Name)
			assert.Equal(t, tt.id, product.ID)
		})
	}
}

func TestSearchProducts(t *testing.T) {
	tests := []struct {
		name           string
		search         string
		expected       []string
		expectedSearch int
		expectedList   int
	}{
		{name: "given name should search", search: "mil", expected: []string{"Milk"}, expectedSearch: 1},
		{name: "given no match should return empty", search: "cheese", expected: []string{}, expectedSearch: 1},
		{name: "given blank name should list all", search: "  ", expected: []string{"Milk", "Bread", "Eggs"}, expectedList: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backend := newProductService(t)

			products, err := svc.SearchProducts(testutil.Context(), tt.search)
			require.NoError(t, err)

			actual := []string{}
			for _, p := range products {
				actual = append(actual, p.Name)
			}
			assert.Equal(t, tt.expected, actual)
			assert.Equal(t, tt.expectedSearch, backend.Count(http.MethodGet, gateway.PathProductsSearch))
			assert.Equal(t, tt.expectedList, backend.Count(http.MethodGet, gateway.PathProducts))
		})
	}
}
