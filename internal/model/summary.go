package model

// Summary holds the dashboard performance metrics computed over the whole
// journal.
type Summary struct {
	TotalTrades   int     `json:"totalTrades"`
	ActiveTrades  int     `json:"activeTrades"`
	TotalProfit   float64 `json:"totalProfit"`
	AvgPLPerTrade float64 `json:"avgPlPerTrade"`
	WinRate       float64 `json:"winRate"` // percent of trades with positive P/L
}
