package redeem

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"walletbot/internal/activity"
	"walletbot/internal/credstore"
	"walletbot/internal/logging"
)

// Result records the outcome of one redemption rule. Field names follow the
// run-report format.
type Result struct {
	Type     string  `json:"type"`
	Phone    string  `json:"phone"`
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
	CostDays float64 `json:"cost_days,omitempty"`
}

// Matcher redeems membership cards against the reward balance according to
// the per-account rules. The prize catalog is fetched once per matcher and
// falls back to the built-in list when the endpoint is unreachable.
type Matcher struct {
	client *activity.Client
	log    *logging.Logger

	catalog []activity.CatalogItem
	loaded  bool

	sleep func(ctx context.Context, d time.Duration) error
}

// NewMatcher creates a matcher for one account client
func NewMatcher(client *activity.Client, log *logging.Logger) *Matcher {
	return &Matcher{
		client: client,
		log:    log,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

func (m *Matcher) loadCatalog(ctx context.Context) []activity.CatalogItem {
	if m.loaded {
		return m.catalog
	}
	m.loaded = true

	items, err := m.client.FetchCatalog(ctx)
	if err != nil || len(items) == 0 {
		m.log.Warnf("获取会员列表失败，使用预定义会员列表：%v", err)
		items = activity.FallbackCatalog()
	} else {
		m.log.Infof("获取会员列表成功，可兑换会员数量：%d", len(items))
	}
	m.catalog = items
	return m.catalog
}

// matches reports whether a configured membership type refers to a catalog
// item. Brand comparison is case-insensitive and substring-based in both
// directions; name comparison is exact-substring in both directions.
func matches(membershipType string, item activity.CatalogItem) bool {
	mt := strings.ToLower(membershipType)
	brand := strings.ToLower(item.Brand)
	if brand != "" && (strings.Contains(brand, mt) || strings.Contains(mt, brand)) {
		return true
	}
	return strings.Contains(item.Name, membershipType) || strings.Contains(membershipType, item.Name)
}

// score ranks candidate items: direct redemptions beat privileges, today's
// stock beats none, and the standard 31-day monthly card breaks ties.
func score(item activity.CatalogItem) int {
	s := 0
	if item.Exchange == activity.ExchangeDirect {
		s += 1000
	}
	if item.Status == activity.StatusAvailable {
		s += 100
	}
	if item.CostDays == 31.0 {
		s += 10
	}
	return s
}

// Redeem processes the rules in order against the given balance. Each rule
// yields exactly one result. Costs of successful redemptions are subtracted
// from the running balance, so later rules see what earlier ones spent.
func (m *Matcher) Redeem(ctx context.Context, rules []credstore.ExchangeRule, availableDays float64) []Result {
	if len(rules) == 0 {
		return nil
	}

	catalog := m.loadCatalog(ctx)
	results := make([]Result, 0, len(rules))
	budget := availableDays

	for _, rule := range rules {
		m.log.Infof("检查 %s 兑换配置（手机号：%s）", rule.Type, rule.Phone)

		var candidates []activity.CatalogItem
		for _, item := range catalog {
			if matches(rule.Type, item) {
				candidates = append(candidates, item)
			}
		}
		if len(candidates) == 0 {
			m.log.Warnf("未找到匹配的会员类型：%s", rule.Type)
			results = append(results, Result{
				Type:    rule.Type,
				Phone:   rule.Phone,
				Message: fmt.Sprintf("未找到匹配的会员类型：%s", rule.Type),
			})
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return score(candidates[i]) > score(candidates[j])
		})
		best := candidates[0]
		m.log.Infof("找到%d个匹配项，选择优先级最高的：%s", len(candidates), best.Name)

		if best.Status != activity.StatusAvailable {
			m.log.Warnf("%s 今日无库存，跳过兑换", best.Name)
			results = append(results, Result{
				Type:    rule.Type,
				Phone:   rule.Phone,
				Message: fmt.Sprintf("%s 今日无库存", best.Name),
			})
			continue
		}

		if budget < best.CostDays {
			m.log.Warnf("天数不足：需要%.2f天，当前仅有%.2f天", best.CostDays, budget)
			results = append(results, Result{
				Type:    rule.Type,
				Phone:   rule.Phone,
				Message: fmt.Sprintf("天数不足：需要%.2f天，当前仅有%.2f天", best.CostDays, budget),
			})
			if err := m.sleep(ctx, 2*time.Second); err != nil {
				return results
			}
			continue
		}

		if m.exchange(ctx, best, rule.Phone) {
			budget -= best.CostDays
			m.log.Infof("兑换成功！剩余天数：%.2f天", budget)
			results = append(results, Result{
				Type:     rule.Type,
				Phone:    rule.Phone,
				Success:  true,
				Message:  fmt.Sprintf("成功兑换 %s，消耗%.2f天", best.Name, best.CostDays),
				CostDays: best.CostDays,
			})
		} else {
			results = append(results, Result{
				Type:    rule.Type,
				Phone:   rule.Phone,
				Message: fmt.Sprintf("兑换 %s 失败", best.Name),
			})
		}

		if err := m.sleep(ctx, 2*time.Second); err != nil {
			return results
		}
	}
	return results
}

// exchange fires one redemption request, preferring GET and falling back to
// POST when the GET transport fails outright. A body that is not the usual
// JSON envelope counts as success: the endpoint answers some completed
// redemptions with an HTML page.
func (m *Matcher) exchange(ctx context.Context, item activity.CatalogItem, phone string) bool {
	m.log.Infof("正在为手机号 %s 兑换 %s", phone, item.Name)

	body, err := m.client.ConvertGoldRich(ctx, item.Code, phone, false)
	if err != nil {
		m.log.Warnf("兑换请求失败，尝试POST方法：%v", err)
		body, err = m.client.ConvertGoldRich(ctx, item.Code, phone, true)
	}
	if err != nil {
		m.log.Errorf("兑换%s失败：网络请求失败", item.Name)
		return false
	}

	var env struct {
		Code    *int   `json:"code"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(body, &env); jsonErr != nil || env.Code == nil {
		m.log.Warnf("兑换请求已发送，但响应格式异常，请检查手机短信确认结果")
		return true
	}
	if *env.Code == 0 {
		m.log.Infof("兑换%s成功！手机号：%s", item.Name, phone)
		return true
	}

	msg := env.Message
	if msg == "" {
		msg = "未知错误"
	}
	m.log.Warnf("兑换%s失败：%s", item.Name, msg)
	return false
}
