package runner

import (
	"walletbot/internal/activity"
	"walletbot/internal/redeem"
)

// timeLayout is the human-readable timestamp format used in result records.
const timeLayout = "2006-01-02 15:04:05"

// AccountResult is the persisted record of one account run. JSON field names
// follow the task-log file format so existing log viewers keep working.
type AccountResult struct {
	Alias     string `json:"us"`
	UserID    string `json:"user_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Logs    []string `json:"logs"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`

	BalanceBefore  float64                 `json:"balance_before"`
	TotalDays      float64                 `json:"total_days"`
	TotalDaysLabel string                  `json:"total_days_label,omitempty"`
	HistoryToday   []activity.RewardRecord `json:"today_records,omitempty"`

	ExchangeResults []redeem.Result `json:"exchange_results"`
}

// BatchSummary aggregates the results of one full batch run
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []*AccountResult
}
