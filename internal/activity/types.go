package activity

import "encoding/json"

// FlexID is a task identifier the vendor serializes as either a JSON number
// or a JSON string.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	*f = FlexID(scalarString(data))
	return nil
}

func (f FlexID) String() string { return string(f) }

// TaskURLInfo carries the browse-destination identifiers attached to a task
// list entry. The id doubles as the browse task id required by completeTask.
type TaskURLInfo struct {
	ID             FlexID `json:"id"`
	BrowseClickURL FlexID `json:"browsClickUrlId"`
}

// Task is one entry of the campaign task list
type Task struct {
	TaskID   FlexID       `json:"taskId"`
	TaskCode string       `json:"taskCode"`
	TaskName string       `json:"taskName"`
	URLInfo  *TaskURLInfo `json:"generalActivityUrlInfo"`
}

// RewardRecord is one reward-history entry
type RewardRecord struct {
	CreateTime string `json:"createTime"`
	Value      FlexID `json:"value"`
}

// BalanceSnapshot is a point-in-time view of the account reward balance.
// The backend stores hundredths of a day; TotalDays is the converted value
// and TotalDaysLabel its display form.
type BalanceSnapshot struct {
	TotalUnits     int64
	TotalDays      float64
	TotalDaysLabel string
	HistoryToday   []RewardRecord
}

// scalarString decodes a JSON value that the vendor sends interchangeably as
// a number or a string. Returns empty for null, absent, or non-scalar values.
func scalarString(raw json.RawMessage) string {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// RoundOutcome reports what a single task round achieved
type RoundOutcome struct {
	// Claimed is true when a completion token was obtained and a reward
	// claim was attempted.
	Claimed bool

	// Exhausted is true when the task list held no more browse tasks, so
	// further rounds would be pointless today.
	Exhausted bool
}
