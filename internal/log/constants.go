package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyToken         = "token"
	KeyEmail         = "email"
	KeyUserID        = "userId"
	KeyRole          = "role"
	KeyCart          = "cart"
	KeyCartID        = "cartId"
	KeyCartItemID    = "cartItemId"
	KeyCartItems     = "cartItems"
	KeyCartResponse  = "cartResponse"
	KeyProduct       = "product"
	KeyProducts      = "products"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyTotal         = "total"
	KeyCacheKey      = "cacheKey"
	KeyJsonCache     = "jsonCache"
	KeyConfig        = "config"
	KeyDbURL         = "dbUrl"
	KeyPathValues    = "pathValues"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
)
