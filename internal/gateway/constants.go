package gateway

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-Id"
	HeaderValueJson     = "application/json"
	BearerPrefix        = "Bearer "
)

const (
	PathLogin            = "/auth/login"
	PathRegister         = "/auth/register"
	PathProducts         = "/products"
	PathProductsSearch   = "/products/search"
	PathAdminProducts    = "/admin/products"
	PathAdminUsersSearch = "/admin/users/search"
	PathOrders           = "/orders"
	PathOrderHistory     = "/orders/my-history"
)
