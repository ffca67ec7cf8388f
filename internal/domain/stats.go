package domain

// DashboardStats are the headline admin dashboard counts.
type DashboardStats struct {
	TotalProperties int64 `json:"totalProperties"`
	TotalAgents     int64 `json:"totalAgents"`
	TotalUsers      int64 `json:"totalUsers"`
}

// UserStats counts buyer and seller accounts.
type UserStats struct {
	TotalUsers int64 `json:"totalUsers"`
	Buyers     int64 `json:"buyers"`
	Sellers    int64 `json:"sellers"`
	Suspended  int64 `json:"suspended"`
}

// PropertyStats counts live listings by review state.
type PropertyStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Assigned int64 `json:"assigned"`
}
