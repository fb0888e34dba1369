package constants

const (
	AppStorefront     = "storefront"
	AppShopServer     = "shop-server"
	AppCartService    = "cart-service"
	AppSessionService = "session-service"
	AppProductService = "product-service"
	AppOrderService   = "order-service"
	AppAdminService   = "admin-service"
	AppGateway        = "gateway"
)
