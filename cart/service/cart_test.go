package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/response"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/storage"
	productRes "github.com/Alturino/storefront/product/pkg/response"
)

var (
	milk  = productRes.Product{ID: 1, Name: "Milk", Price: decimal.RequireFromString("2.50"), Quantity: 10}
	bread = productRes.Product{ID: 2, Name: "Bread", Price: decimal.RequireFromString("1.25"), Quantity: 5}
	eggs  = productRes.Product{ID: 3, Name: "Eggs", Price: decimal.RequireFromString("3.99"), Quantity: 0}
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("storage unavailable")
}

func (failingStore) Remove(context.Context, string) error {
	return errors.New("storage unavailable")
}

func persistedLines(t *testing.T, store storage.Store) []response.CartLine {
	raw, err := store.Get(testContext(), storage.KeyCart)
	require.NoError(t, err)
	lines := []response.CartLine{}
	require.NoError(t, json.Unmarshal([]byte(raw), &lines))
	return lines
}

func TestCartScenario(t *testing.T) {
	c := testContext()
	store := storage.NewMemoryStore()
	cart := NewCartService(store)

	assert.True(t, cart.Total().Equal(decimal.Zero))

	require.NoError(t, cart.AddItem(c, milk, 1))
	assert.Equal(t, "2.50", cart.Total().StringFixed(2))

	require.NoError(t, cart.AddItem(c, milk, 1))
	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "5.00", cart.Total().StringFixed(2))

	cart.RemoveItem(c, milk.ID)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total().IsZero())
	assert.Empty(t, persistedLines(t, store))
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name          string
		adds          []response.CartLine
		expected      []response.CartLine
		expectedTotal string
		expectedCount int
		expectedErr   error
	}{
		{
			name:          "given same product twice should accumulate quantity",
			adds:          []response.CartLine{{Product: milk, Quantity: 1}, {Product: milk, Quantity: 2}},
			expected:      []response.CartLine{{Product: milk, Quantity: 3}},
			expectedTotal: "7.50",
			expectedCount: 3,
		},
		{
			name:          "given distinct products should keep insertion order",
			adds:          []response.CartLine{{Product: bread, Quantity: 2}, {Product: milk, Quantity: 3}, {Product: bread, Quantity: 1}},
			expected:      []response.CartLine{{Product: bread, Quantity: 3}, {Product: milk, Quantity: 3}},
			expectedTotal: "11.25",
			expectedCount: 6,
		},
		{
			name:          "given out of stock product should still add",
			adds:          []response.CartLine{{Product: eggs, Quantity: 4}},
			expected:      []response.CartLine{{Product: eggs, Quantity: 4}},
			expectedTotal: "15.96",
			expectedCount: 4,
		},
		{
			name:          "given zero quantity should return error and not mutate",
			adds:          []response.CartLine{{Product: milk, Quantity: 0}},
			expected:      []response.CartLine{},
			expectedTotal: "0.00",
			expectedCount: 0,
			expectedErr:   inErrors.ErrInvalidQuantity,
		},
		{
			name:          "given negative quantity should return error and not mutate",
			adds:          []response.CartLine{{Product: milk, Quantity: 1}, {Product: milk, Quantity: -3}},
			expected:      []response.CartLine{{Product: milk, Quantity: 1}},
			expectedTotal: "2.50",
			expectedCount: 1,
			expectedErr:   inErrors.ErrInvalidQuantity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			store := storage.NewMemoryStore()
			cart := NewCartService(store)

			var err error
			for _, add := range tt.adds {
				if addErr := cart.AddItem(c, add.Product, add.Quantity); addErr != nil {
					err = addErr
				}
			}
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			assert.EqualValues(t, tt.expected, cart.Lines())
			assert.Equal(t, tt.expectedTotal, cart.Total().StringFixed(2))
			assert.Equal(t, tt.expectedCount, cart.ItemCount())
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name          string
		productID     int64
		quantity      int
		expected      []response.CartLine
		expectedTotal string
	}{
		{
			name:          "given positive quantity should set absolute quantity",
			productID:     milk.ID,
			quantity:      5,
			expected:      []response.CartLine{{Product: milk, Quantity: 5}, {Product: bread, Quantity: 3}},
			expectedTotal: "16.25",
		},
		{
			name:          "given zero quantity should remove line",
			productID:     milk.ID,
			quantity:      0,
			expected:      []response.CartLine{{Product: bread, Quantity: 3}},
			expectedTotal: "3.75",
		},
		{
			name:          "given negative quantity should remove line",
			productID:     bread.ID,
			quantity:      -1,
			expected:      []response.CartLine{{Product: milk, Quantity: 2}},
			expectedTotal: "5.00",
		},
		{
			name:          "given unknown product should be no-op",
			productID:     eggs.ID,
			quantity:      4,
			expected:      []response.CartLine{{Product: milk, Quantity: 2}, {Product: bread, Quantity: 3}},
			expectedTotal: "8.75",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			store := storage.NewMemoryStore()
			cart := NewCartService(store)
			require.NoError(t, cart.AddItem(c, milk, 2))
			require.NoError(t, cart.AddItem(c, bread, 3))

			cart.UpdateQuantity(c, tt.productID, tt.quantity)

			assert.EqualValues(t, tt.expected, cart.Lines())
			assert.Equal(t, tt.expectedTotal, cart.Total().StringFixed(2))
			assertLines(t, tt.expected, persistedLines(t, store))
		})
	}
}

func TestRemoveItemUnknownProduct(t *testing.T) {
	c := testContext()
	cart := NewCartService(storage.NewMemoryStore())
	require.NoError(t, cart.AddItem(c, milk, 1))

	cart.RemoveItem(c, 42)

	assert.Len(t, cart.Lines(), 1)
}

func TestItemCountSumsQuantities(t *testing.T) {
	c := testContext()
	cart := NewCartService(storage.NewMemoryStore())
	require.NoError(t, cart.AddItem(c, milk, 2))
	require.NoError(t, cart.AddItem(c, bread, 3))

	assert.Equal(t, 5, cart.ItemCount())
	assert.Len(t, cart.Lines(), 2)
}

func TestClear(t *testing.T) {
	c := testContext()
	store := storage.NewMemoryStore()
	cart := NewCartService(store)
	require.NoError(t, cart.AddItem(c, milk, 2))
	require.NoError(t, cart.AddItem(c, bread, 3))

	cart.Clear(c)

	assert.True(t, cart.Total().IsZero())
	assert.Equal(t, 0, cart.ItemCount())
	assert.Empty(t, persistedLines(t, store))
}

func TestRemoveOrdered(t *testing.T) {
	tests := []struct {
		name     string
		ordered  []response.CartLine
		expected []response.CartLine
	}{
		{
			name:     "given every line ordered should empty cart",
			ordered:  []response.CartLine{{Product: milk, Quantity: 2}, {Product: bread, Quantity: 1}},
			expected: []response.CartLine{},
		},
		{
			name:     "given line added after order should keep it",
			ordered:  []response.CartLine{{Product: milk, Quantity: 2}},
			expected: []response.CartLine{{Product: bread, Quantity: 1}},
		},
		{
			name:     "given quantity raised after order should keep the difference",
			ordered:  []response.CartLine{{Product: milk, Quantity: 1}, {Product: bread, Quantity: 1}},
			expected: []response.CartLine{{Product: milk, Quantity: 1}},
		},
		{
			name:     "given product no longer in cart should ignore it",
			ordered:  []response.CartLine{{Product: eggs, Quantity: 4}, {Product: milk, Quantity: 2}, {Product: bread, Quantity: 1}},
			expected: []response.CartLine{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			store := storage.NewMemoryStore()
			cart := NewCartService(store)
			require.NoError(t, cart.AddItem(c, milk, 2))
			require.NoError(t, cart.AddItem(c, bread, 1))

			cart.RemoveOrdered(c, tt.ordered)

			assertLines(t, tt.expected, cart.Lines())
			assertLines(t, tt.expected, persistedLines(t, store))
		})
	}
}

func TestTotalInvariantAcrossOperations(t *testing.T) {
	c := testContext()
	cart := NewCartService(storage.NewMemoryStore())

	check := func() {
		expected := decimal.Zero
		for _, line := range cart.Lines() {
			expected = expected.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		assert.True(t, expected.Equal(cart.Total()), "total should equal sum of price x quantity")
		snapshot := cart.Snapshot()
		assert.True(t, snapshot.Total.Equal(cart.Total()))
		assert.Equal(t, cart.ItemCount(), snapshot.ItemCount)
	}

	require.NoError(t, cart.AddItem(c, milk, 1))
	check()
	require.NoError(t, cart.AddItem(c, bread, 4))
	check()
	cart.UpdateQuantity(c, milk.ID, 7)
	check()
	require.NoError(t, cart.AddItem(c, eggs, 2))
	check()
	cart.RemoveItem(c, bread.ID)
	check()
	cart.UpdateQuantity(c, eggs.ID, 0)
	check()
}

func TestLinesReturnsCopy(t *testing.T) {
	c := testContext()
	cart := NewCartService(storage.NewMemoryStore())
	require.NoError(t, cart.AddItem(c, milk, 1))

	lines := cart.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestHydrate(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected []response.CartLine
	}{
		{
			name:     "given no persisted cart should start empty",
			raw:      nil,
			expected: []response.CartLine{},
		},
		{
			name:     "given persisted cart should restore lines in order",
			raw:      ptr(`[{"product":{"id":2,"name":"Bread","price":1.25,"quantity":5},"quantity":3},{"product":{"id":1,"name":"Milk","price":"2.50","quantity":10},"quantity":1}]`),
			expected: []response.CartLine{{Product: bread, Quantity: 3}, {Product: milk, Quantity: 1}},
		},
		{
			name:     "given duplicate products should merge quantities",
			raw:      ptr(`[{"product":{"id":1,"name":"Milk","price":2.5,"quantity":10},"quantity":1},{"product":{"id":1,"name":"Milk","price":2.5,"quantity":10},"quantity":2}]`),
			expected: []response.CartLine{{Product: milk, Quantity: 3}},
		},
		{
			name:     "given non positive quantities should drop lines",
			raw:      ptr(`[{"product":{"id":1,"name":"Milk","price":2.5,"quantity":10},"quantity":0},{"product":{"id":2,"name":"Bread","price":1.25,"quantity":5},"quantity":-2}]`),
			expected: []response.CartLine{},
		},
		{
			name:     "given corrupt cart should start empty",
			raw:      ptr(`{not json`),
			expected: []response.CartLine{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			store := storage.NewMemoryStore()
			if tt.raw != nil {
				require.NoError(t, store.Set(c, storage.KeyCart, *tt.raw))
			}
			cart := NewCartService(store)

			cart.Hydrate(c)

			assertLines(t, tt.expected, cart.Lines())
		})
	}
}

func TestPersistenceFailureIsNotSurfaced(t *testing.T) {
	c := testContext()
	cart := NewCartService(failingStore{})

	cart.Hydrate(c)
	require.NoError(t, cart.AddItem(c, milk, 2))
	cart.UpdateQuantity(c, milk.ID, 3)
	cart.Clear(c)
	require.NoError(t, cart.AddItem(c, bread, 1))

	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, "1.25", cart.Total().StringFixed(2))
}

func TestRoundTripThroughStore(t *testing.T) {
	c := testContext()
	store := storage.NewMemoryStore()
	first := NewCartService(store)
	require.NoError(t, first.AddItem(c, milk, 2))
	require.NoError(t, first.AddItem(c, bread, 1))

	second := NewCartService(store)
	second.Hydrate(c)

	assert.Equal(t, first.ItemCount(), second.ItemCount())
	assert.True(t, first.Total().Equal(second.Total()))
}

// assertLines compares lines with decimal equality since a json round trip
// changes the decimal representation.
func assertLines(t *testing.T, expected []response.CartLine, actual []response.CartLine) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Product.ID, actual[i].Product.ID)
		assert.Equal(t, expected[i].Product.Name, actual[i].Product.Name)
		assert.Equal(t, expected[i].Product.Quantity, actual[i].Product.Quantity)
		assert.True(t, expected[i].Product.Price.Equal(actual[i].Product.Price), "price should be equal")
		assert.Equal(t, expected[i].Quantity, actual[i].Quantity)
	}
}

func ptr(s string) *string {
	return &s
}
