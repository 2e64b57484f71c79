package models

type DashboardStats struct {
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalUsers    int     `json:"totalUsers"`
	TotalProducts int     `json:"totalProducts"`
	PendingOrders int     `json:"pendingOrders"`
	RecentOrders  []Order `json:"recentOrders,omitempty"`
}
