package dto

// DashboardStats aggregates the numbers the dashboard landing page shows.
// Served from a short-TTL Redis cache; values may lag writes by up to the TTL.
type DashboardStats struct {
	TotalRounds     int64 `json:"total_rounds"`
	TotalLots       int64 `json:"total_lots"`
	LotsBelowMin    int64 `json:"lots_below_min"`
	OpenAlerts      int64 `json:"open_alerts"`
	IssuesLast30d   int64 `json:"issues_last_30d"`
	RoundsIssued30d int64 `json:"rounds_issued_30d"`
	ExpiringLots    int64 `json:"expiring_lots"`
}
