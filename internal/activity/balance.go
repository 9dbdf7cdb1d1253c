package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BalanceTracker reads the account reward balance and today's reward history
type BalanceTracker struct {
	client *Client
	now    func() time.Time
}

// NewBalanceTracker creates a tracker bound to one account client
func NewBalanceTracker(client *Client) *BalanceTracker {
	return &BalanceTracker{client: client, now: time.Now}
}

// Refresh fetches the current balance and today's history. Returns nil when
// either call fails; the client error info then describes why.
func (b *BalanceTracker) Refresh(ctx context.Context) *BalanceSnapshot {
	return b.refreshAt(ctx, b.now().Format("2006-01-02"))
}

func (b *BalanceTracker) refreshAt(ctx context.Context, today string) *BalanceSnapshot {
	params := b.client.baseParams()

	totalResp := b.client.Get(ctx, "/mp/api/generalActivity/queryUserGoldRichSum", params, nil)
	if totalResp == nil || totalResp.Code != 0 {
		b.client.setError("获取兑换视频天数失败：%s", respRaw(totalResp))
		return nil
	}
	units, err := strconv.ParseInt(scalarString(totalResp.Value), 10, 64)
	if err != nil {
		b.client.setError("获取兑换视频天数失败：%s", totalResp.Raw)
		return nil
	}

	historyParams := b.client.baseParams()
	historyParams.Set("pageNum", "1")
	historyParams.Set("pageSize", "20")

	historyResp := b.client.Get(ctx, "/mp/api/generalActivity/queryUserJoinList", historyParams, nil)
	if historyResp == nil || historyResp.Code != 0 {
		b.client.setError("查询任务完成记录失败：%s", respRaw(historyResp))
		return nil
	}

	var value struct {
		Data []RewardRecord `json:"data"`
	}
	if err := json.Unmarshal(historyResp.Value, &value); err != nil {
		b.client.setError("查询任务完成记录失败：%s", historyResp.Raw)
		return nil
	}

	snapshot := &BalanceSnapshot{
		TotalUnits: units,
		TotalDays:  float64(units) / 100,
	}
	snapshot.TotalDaysLabel = fmt.Sprintf("%.2f天", snapshot.TotalDays)

	// The history endpoint has no date filter, so the first page is scanned
	// for entries whose timestamp starts with today's date.
	for _, rec := range value.Data {
		if len(rec.CreateTime) >= len(today) && rec.CreateTime[:len(today)] == today {
			snapshot.HistoryToday = append(snapshot.HistoryToday, rec)
		}
	}
	return snapshot
}

func respRaw(resp *Response) string {
	if resp == nil {
		return "网络请求异常"
	}
	return resp.Raw
}
