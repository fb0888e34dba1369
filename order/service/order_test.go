package service

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartService "github.com/Alturino/storefront/cart/service"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/storage"
	"github.com/Alturino/storefront/internal/testutil"
	"github.com/Alturino/storefront/order/pkg/request"
	productRes "github.com/Alturino/storefront/product/pkg/response"
	sessionReq "github.com/Alturino/storefront/session/pkg/request"
	sessionService "github.com/Alturino/storefront/session/service"
)

var (
	milk  = productRes.Product{ID: 1, Name: "Milk", Price: decimal.RequireFromString("2.50"), Quantity: 10}
	bread = productRes.Product{ID: 2, Name: "Bread", Price: decimal.RequireFromString("1.25"), Quantity: 5}
)

type fixture struct {
	backend *testutil.Backend
	session *sessionService.SessionService
	cart    *cartService.CartService
	orders  *OrderService
}

func newFixture(t *testing.T, login bool) fixture {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	store := storage.NewMemoryStore()
	gw := gateway.New(backend.URL())
	session := sessionService.NewSessionService(store, gw)
	cart := cartService.NewCartService(store)
	if login {
		_, err := session.Login(
			testutil.Context(),
			sessionReq.Login{Email: testutil.UserEmail, Password: testutil.UserPassword},
		)
		require.NoError(t, err)
	}
	return fixture{
		backend: backend,
		session: session,
		cart:    cart,
		orders:  NewOrderService(gw, cart, session),
	}
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, milk, 2))
	require.NoError(t, f.cart.AddItem(c, bread, 1))

	order, err := f.orders.Checkout(c)
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("6.25")))
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, milk.ID, order.OrderItems[0].Product.ID)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	assert.True(t, f.cart.IsEmpty())
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.Len(t, f.backend.Orders(), 1)
}

func TestCheckoutKeepsItemsAddedWhileOrdering(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, milk, 2))
	f.backend.OnOrder(func() {
		assert.NoError(t, f.cart.AddItem(c, bread, 1))
		assert.NoError(t, f.cart.AddItem(c, milk, 1))
	})

	order, err := f.orders.Checkout(c)
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	lines := f.cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, milk.ID, lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, bread.ID, lines[1].Product.ID)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestCheckoutEmptyCartMakesNoRequest(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.orders.Checkout(testutil.Context())

	require.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Equal(t, 0, f.backend.Count(http.MethodPost, gateway.PathOrders))
}

func TestCheckoutAnonymousRejected(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, false)
	require.NoError(t, f.cart.AddItem(c, milk, 1))

	_, err := f.orders.Checkout(c)

	require.ErrorIs(t, err, inErrors.ErrUnauthorized)
	assert.Equal(t, 0, f.backend.Count(http.MethodPost, gateway.PathOrders))
	assert.Equal(t, 1, f.cart.ItemCount())
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, milk, 3))
	f.backend.FailOrders(true)

	_, err := f.orders.Checkout(c)

	require.ErrorIs(t, err, inErrors.ErrPlaceOrder)
	assert.Equal(t, 1, f.backend.Count(http.MethodPost, gateway.PathOrders))
	assert.Equal(t, 3, f.cart.ItemCount())
	assert.True(t, f.session.IsAuthenticated())
}

func TestCheckoutRevokedCredentialTearsDownSession(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, milk, 1))
	f.backend.RevokeSessions()

	_, err := f.orders.Checkout(c)

	require.ErrorIs(t, err, inErrors.ErrPlaceOrder)
	require.ErrorIs(t, err, inErrors.ErrUnauthorized)
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, 1, f.cart.ItemCount())
}

func TestFindOrderHistory(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, bread, 2))
	placed, err := f.orders.Checkout(c)
	require.NoError(t, err)

	orders, err := f.orders.FindOrderHistory(c)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("2.5")))
}

func TestFindOrderByID(t *testing.T) {
	c := testutil.Context()
	f := newFixture(t, true)
	require.NoError(t, f.cart.AddItem(c, milk, 1))
	placed, err := f.orders.Checkout(c)
	require.NoError(t, err)

	tests := []struct {
		name        string
		param       request.FindOrderById
		expectedErr bool
		expectedHit int
	}{
		{name: "given placed order id should return order", param: request.FindOrderById{OrderID: placed.ID}, expectedHit: 1},
		{name: "given unknown id should fail", param: request.FindOrderById{OrderID: placed.ID + 1000}, expectedErr: true},
		{name: "given zero id should fail validation", param: request.FindOrderById{OrderID: 0}, expectedErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := f.orders.FindOrderByID(c, tt.param)
			if tt.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, placed.ID, order.ID)
			assert.Len(t, order.OrderItems, tt.expectedHit)
		})
	}
}
