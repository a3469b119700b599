package response

type DashboardStats struct {
	TotalProducts    int64 `json:"totalProducts"`
	ActiveProducts   int64 `json:"activeProducts"`
	InactiveProducts int64 `json:"inactiveProducts"`
	TotalCustomers   int64 `json:"totalCustomers"`
}
