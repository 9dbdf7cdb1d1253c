package runner

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildReport renders a result record as the per-account text report that is
// stored on the credential record and pushed to the notification webhook.
func BuildReport(result *AccountResult) string {
	var b strings.Builder

	b.WriteString("【小米钱包每日任务报告】\n")
	fmt.Fprintf(&b, "账号别名：%s\n", result.Alias)
	fmt.Fprintf(&b, "小米ID：%s\n", result.UserID)

	label := result.TotalDaysLabel
	if label == "" {
		label = "未知"
	}
	fmt.Fprintf(&b, "当前可兑换视频天数：%s\n\n", label)

	fmt.Fprintf(&b, "%s 任务记录\n", reportDate(result))
	b.WriteString(strings.Repeat("-", 25))

	if len(result.HistoryToday) == 0 {
		b.WriteString("\n  今日暂无新增奖励记录")
	} else {
		for _, rec := range result.HistoryToday {
			when := rec.CreateTime
			if when == "" {
				when = "未知时间"
			}
			days := 0.0
			if v, err := strconv.ParseFloat(rec.Value.String(), 64); err == nil {
				days = v / 100
			}
			fmt.Fprintf(&b, "\n| %s\n| 领到视频会员，+%.2f天", when, days)
		}
	}

	if len(result.ExchangeResults) > 0 {
		b.WriteString("\n\n会员兑换结果\n")
		b.WriteString(strings.Repeat("-", 25))

		succeeded := 0
		for _, r := range result.ExchangeResults {
			if r.Success {
				succeeded++
			}
		}
		fmt.Fprintf(&b, "\n成功：%d个  失败：%d个", succeeded, len(result.ExchangeResults)-succeeded)

		for _, r := range result.ExchangeResults {
			status := "失败"
			if r.Success {
				status = "成功"
			}
			fmt.Fprintf(&b, "\n| [%s] %s -> %s\n| %s", status, r.Type, r.Phone, r.Message)
		}
	} else {
		b.WriteString("\n\n会员兑换\n")
		b.WriteString(strings.Repeat("-", 25))
		b.WriteString("\n  未配置会员兑换")
	}

	if result.Error != "" {
		fmt.Fprintf(&b, "\n\n执行异常：%s", result.Error)
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 25))
	return b.String()
}

// reportDate extracts the calendar date of the run from its start timestamp
func reportDate(result *AccountResult) string {
	if len(result.StartTime) >= 10 {
		return result.StartTime[:10]
	}
	return result.StartTime
}
