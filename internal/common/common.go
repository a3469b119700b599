package common

const (
	AppName      = "storefront"
	AudienceUser = "storefront-user"

	ScopeAdmin   = "storefront-admin"
	ScopeCart    = "storefront-cart"
	ScopeProduct = "storefront-product"
	ScopeUser    = "storefront-user-account"

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
