package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyTag                = "tag"
	KeyRole               = "role"
	KeyUser               = "user"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyResponseStatus     = "responseStatus"
	KeyConfig             = "config"
	KeyStorageKey         = "storageKey"
	KeyStorageDriver      = "storageDriver"
	KeyProductID          = "productId"
	KeyProductName        = "productName"
	KeyProduct            = "product"
	KeyQuantity           = "quantity"
	KeyCartLines          = "cartLines"
	KeyCartTotal          = "cartTotal"
	KeyCartItemCount      = "cartItemCount"
	KeyOrderID            = "orderId"
	KeyOrders             = "orders"
	KeySearchName         = "searchName"
	KeyRoute              = "route"
	KeyRedirect           = "redirect"
)
