package redeem

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walletbot/internal/activity"
	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/logging"
	"walletbot/internal/session"
)

func testLogger() *logging.Logger {
	return logging.NewLogger("test").SetOutputs(io.Discard)
}

func testMatcher(t *testing.T, handler http.Handler, catalog []activity.CatalogItem) *Matcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	vendor := config.DefaultVendor()
	vendor.BaseURL = srv.URL
	client := activity.NewClient(vendor, config.DefaultProfile(), &session.Session{CUserID: "cu", ServiceToken: "tok"}, testLogger())

	m := NewMatcher(client, testLogger())
	m.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	if catalog != nil {
		m.catalog = catalog
		m.loaded = true
	}
	return m
}

func monthlyCard(code, name, brand string) activity.CatalogItem {
	return activity.CatalogItem{
		Code:     code,
		Name:     name,
		Brand:    brand,
		CostDays: 31,
		Exchange: activity.ExchangeDirect,
		Status:   activity.StatusAvailable,
	}
}

func TestRedeemPrefersDirectOverPrivilege(t *testing.T) {
	var redeemed []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redeemed = append(redeemed, r.URL.Query().Get("prizeCode"))
		w.Write([]byte(`{"code":0}`))
	})

	privilege := monthlyCard("PRIV", "优酷VIP会员1分购特权", "youku")
	privilege.Exchange = activity.ExchangePrivilege
	direct := monthlyCard("DIRECT", "优酷VIP会员月卡", "youku")

	m := testMatcher(t, handler, []activity.CatalogItem{privilege, direct})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "youku", Phone: "13800000000"}}, 100)
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("expected one successful result, got %+v", results)
	}
	if len(redeemed) != 1 || redeemed[0] != "DIRECT" {
		t.Errorf("expected the direct card to win, redeemed %v", redeemed)
	}
	if results[0].CostDays != 31 {
		t.Errorf("expected 31 cost days, got %v", results[0].CostDays)
	}
}

func TestRedeemInsufficientBalanceSkipsNetwork(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":0}`))
	})
	m := testMatcher(t, handler, []activity.CatalogItem{monthlyCard("PC1", "腾讯视频VIP月卡", "tencent")})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "tencent", Phone: "13800000000"}}, 30.5)
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failed result, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "天数不足") {
		t.Errorf("expected an insufficient-balance message, got %q", results[0].Message)
	}
	if calls != 0 {
		t.Errorf("insufficient balance must not hit the network, saw %d calls", calls)
	}
}

func TestRedeemBudgetCarriesAcrossRules(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0}`))
	})
	m := testMatcher(t, handler, []activity.CatalogItem{
		monthlyCard("PC1", "腾讯视频VIP月卡", "tencent"),
		monthlyCard("PC2", "爱奇艺黄金会员月卡", "iqiyi"),
		monthlyCard("PC3", "芒果TV会员月卡", "mgtv"),
	})

	rules := []credstore.ExchangeRule{
		{Type: "tencent", Phone: "13800000001"},
		{Type: "iqiyi", Phone: "13800000002"},
		{Type: "mgtv", Phone: "13800000003"},
	}
	results := m.Redeem(context.Background(), rules, 62)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Success || !results[1].Success {
		t.Errorf("first two rules should succeed with a 62-day balance: %+v", results[:2])
	}
	if results[2].Success {
		t.Errorf("third rule should fail, balance was spent: %+v", results[2])
	}
	if !strings.Contains(results[2].Message, "天数不足") {
		t.Errorf("expected an insufficient-balance message, got %q", results[2].Message)
	}
}

func TestRedeemOutOfStockSkipsNetwork(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":0}`))
	})

	card := monthlyCard("PC1", "芒果TV会员月卡", "mgtv")
	card.Status = activity.StatusOutOfStock
	m := testMatcher(t, handler, []activity.CatalogItem{card})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "mgtv", Phone: "13800000000"}}, 100)
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failed result, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "今日无库存") {
		t.Errorf("expected an out-of-stock message, got %q", results[0].Message)
	}
	if calls != 0 {
		t.Errorf("out-of-stock must not hit the network, saw %d calls", calls)
	}
}

func TestRedeemUnknownType(t *testing.T) {
	m := testMatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		[]activity.CatalogItem{monthlyCard("PC1", "腾讯视频VIP月卡", "tencent")})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "netflix", Phone: "13800000000"}}, 100)
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failed result, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "未找到匹配的会员类型") {
		t.Errorf("expected a not-found message, got %q", results[0].Message)
	}
}

func TestExchangeFallsBackToPost(t *testing.T) {
	postSeen := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Kill the connection so the GET transport fails.
			panic(http.ErrAbortHandler)
		}
		postSeen = true
		w.Write([]byte(`{"code":0}`))
	})
	m := testMatcher(t, handler, []activity.CatalogItem{monthlyCard("PC1", "腾讯视频VIP月卡", "tencent")})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "tencent", Phone: "13800000000"}}, 100)
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("expected success via POST fallback, got %+v", results)
	}
	if !postSeen {
		t.Error("expected the POST fallback to be used")
	}
}

func TestExchangeTreatsNonJSONAsSuccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>兑换处理中</body></html>`))
	})
	m := testMatcher(t, handler, []activity.CatalogItem{monthlyCard("PC1", "腾讯视频VIP月卡", "tencent")})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "tencent", Phone: "13800000000"}}, 100)
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("expected lenient success for a non-JSON body, got %+v", results)
	}
}

func TestRedeemDomainFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":1,"message":"兑换次数已达上限"}`))
	})
	m := testMatcher(t, handler, []activity.CatalogItem{monthlyCard("PC1", "腾讯视频VIP月卡", "tencent")})

	results := m.Redeem(context.Background(), []credstore.ExchangeRule{{Type: "tencent", Phone: "13800000000"}}, 100)
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected a failed result, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "失败") {
		t.Errorf("expected a failure message, got %q", results[0].Message)
	}
}

func TestLoadCatalogFallsBack(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":9,"message":"unavailable"}`))
	})
	m := testMatcher(t, handler, nil)

	catalog := m.loadCatalog(context.Background())
	if len(catalog) != 4 {
		t.Fatalf("expected the built-in catalog, got %d items", len(catalog))
	}
}
