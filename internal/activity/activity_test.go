package activity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walletbot/internal/config"
	"walletbot/internal/logging"
	"walletbot/internal/session"
)

func testLogger() *logging.Logger {
	return logging.NewLogger("test").SetOutputs(io.Discard)
}

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	vendor := config.DefaultVendor()
	vendor.BaseURL = srv.URL
	sess := &session.Session{CUserID: "cu-1", ServiceToken: "tok-1"}
	return NewClient(vendor, config.DefaultProfile(), sess, testLogger()), srv
}

func noDelayCycle(client *Client) *TaskCycle {
	tc := NewTaskCycle(client, config.NewDefaultConfig(), testLogger())
	tc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return tc
}

func TestGetTaskListFiltersBrowseTasks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mp/api/generalActivity/getTaskList" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Cookie"); !strings.Contains(got, "cUserId=cu-1") {
			t.Errorf("session cookie missing, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
			{"taskId":111,"taskCode":"OTHER","taskName":"签到任务"},
			{"taskId":222,"taskCode":"BROWSE","taskName":"浏览组浏览任务-每日",
			 "generalActivityUrlInfo":{"id":"t-9","browsClickUrlId":42}}
		]}}`))
	})
	client, _ := testClient(t, handler)

	tasks, err := client.GetTaskList(context.Background())
	if err != nil {
		t.Fatalf("GetTaskList failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 browse task, got %d", len(tasks))
	}
	if tasks[0].TaskID.String() != "222" {
		t.Errorf("expected taskId 222, got %s", tasks[0].TaskID)
	}
	if tasks[0].URLInfo.ID.String() != "t-9" {
		t.Errorf("expected url info id t-9, got %s", tasks[0].URLInfo.ID)
	}
	if tasks[0].URLInfo.BrowseClickURL.String() != "42" {
		t.Errorf("expected click url id 42, got %s", tasks[0].URLInfo.BrowseClickURL)
	}
}

func TestDomainErrorRecordsRawResponse(t *testing.T) {
	raw := `{"code":5,"message":"风控拦截"}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	})
	client, _ := testClient(t, handler)

	tasks, err := client.GetTaskList(context.Background())
	if err == nil {
		t.Fatal("expected an error for non-zero domain code")
	}
	if tasks != nil {
		t.Errorf("expected nil tasks, got %v", tasks)
	}
	if info := client.ErrorInfo(); !strings.Contains(info, raw) {
		t.Errorf("error info should carry the raw response, got %q", info)
	}

	client.ClearError()
	if client.ErrorInfo() != "" {
		t.Error("ClearError should reset the recorded error")
	}
}

func TestRunRoundExhaustedOnEmptyList(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
			{"taskId":1,"taskCode":"OTHER","taskName":"签到任务"}
		]}}`))
	})
	client, _ := testClient(t, handler)

	outcome, err := noDelayCycle(client).RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound failed: %v", err)
	}
	if !outcome.Exhausted || outcome.Claimed {
		t.Errorf("expected exhausted round, got %+v", outcome)
	}
	if requests != 1 {
		t.Errorf("an empty round must stop after the task list call, saw %d requests", requests)
	}
}

func TestRunRoundClaimsViaCompleteTask(t *testing.T) {
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/mp/api/generalActivity/getTaskList":
			w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
				{"taskId":222,"taskCode":"BROWSE","taskName":"浏览组浏览任务",
				 "generalActivityUrlInfo":{"id":"t-9","browsClickUrlId":"42"}}
			]}}`))
		case "/mp/api/generalActivity/completeTask":
			if got := r.URL.Query().Get("browsTaskId"); got != "t-9" {
				t.Errorf("expected browsTaskId t-9, got %q", got)
			}
			if got := r.URL.Query().Get("festivalStatus"); got != "0" {
				t.Errorf("expected festivalStatus 0, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":987654}`))
		case "/mp/api/generalActivity/luckDraw":
			if got := r.URL.Query().Get("userTaskId"); got != "987654" {
				t.Errorf("expected userTaskId 987654, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":{}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client, _ := testClient(t, handler)

	outcome, err := noDelayCycle(client).RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound failed: %v", err)
	}
	if !outcome.Claimed {
		t.Error("expected a claimed round")
	}
	if len(paths) != 3 {
		t.Errorf("expected 3 calls, got %v", paths)
	}
}

func TestRunRoundFallsBackToGetTask(t *testing.T) {
	getTaskCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mp/api/generalActivity/getTaskList":
			w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
				{"taskId":222,"taskCode":"BROWSE","taskName":"浏览组浏览任务",
				 "generalActivityUrlInfo":{"id":"t-9","browsClickUrlId":"42"}}
			]}}`))
		case "/mp/api/generalActivity/completeTask":
			// Completion acknowledged without a token.
			w.Write([]byte(`{"code":0,"value":null}`))
		case "/mp/api/generalActivity/getTask":
			getTaskCalled = true
			if err := r.ParseForm(); err != nil {
				t.Fatalf("bad form: %v", err)
			}
			if got := r.PostForm.Get("jrairstar_ph"); got != "98lj8puDf9Tu/WwcyMpVyQ==" {
				t.Errorf("expected signing parameter, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":{"taskInfo":{"userTaskId":"555"}}}`))
		case "/mp/api/generalActivity/luckDraw":
			if got := r.URL.Query().Get("userTaskId"); got != "555" {
				t.Errorf("expected fallback token 555, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":{}}`))
		}
	})
	client, _ := testClient(t, handler)

	outcome, err := noDelayCycle(client).RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound failed: %v", err)
	}
	if !getTaskCalled {
		t.Error("expected fallback via getTask")
	}
	if !outcome.Claimed {
		t.Error("expected a claimed round")
	}
}

func TestRunRoundReusesCachedBrowseTaskID(t *testing.T) {
	round := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mp/api/generalActivity/getTaskList":
			round++
			if round == 1 {
				w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
					{"taskId":1,"taskCode":"BROWSE","taskName":"浏览组浏览任务",
					 "generalActivityUrlInfo":{"id":"t-1","browsClickUrlId":"7"}}
				]}}`))
			} else {
				// Second listing omits the url info entirely.
				w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
					{"taskId":2,"taskCode":"BROWSE","taskName":"浏览组浏览任务"}
				]}}`))
			}
		case "/mp/api/generalActivity/completeTask":
			if got := r.URL.Query().Get("browsTaskId"); got != "t-1" {
				t.Errorf("expected cached browse task id t-1, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":1}`))
		case "/mp/api/generalActivity/luckDraw":
			w.Write([]byte(`{"code":0,"value":{}}`))
		}
	})
	client, _ := testClient(t, handler)
	tc := noDelayCycle(client)

	for i := 0; i < 2; i++ {
		if _, err := tc.RunRound(context.Background()); err != nil {
			t.Fatalf("round %d failed: %v", i+1, err)
		}
	}
}

func TestRunRoundFailsWithoutBrowseTaskID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"value":{"taskInfoList":[
			{"taskId":1,"taskCode":"BROWSE","taskName":"浏览组浏览任务"}
		]}}`))
	})
	client, _ := testClient(t, handler)

	if _, err := noDelayCycle(client).RunRound(context.Background()); err == nil {
		t.Fatal("expected an error when no browse task id was ever seen")
	}
}

func TestBalanceRefreshFormatsDays(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mp/api/generalActivity/queryUserGoldRichSum":
			w.Write([]byte(`{"code":0,"value":"3150"}`))
		case "/mp/api/generalActivity/queryUserJoinList":
			if got := r.URL.Query().Get("pageSize"); got != "20" {
				t.Errorf("expected pageSize 20, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":{"data":[
				{"createTime":"2024-05-01 08:10:00","value":20},
				{"createTime":"2024-05-0100:00","value":20},
				{"createTime":"2024-04-30 23:59:59","value":20}
			]}}`))
		}
	})
	client, _ := testClient(t, handler)

	tracker := NewBalanceTracker(client)
	snapshot := tracker.refreshAt(context.Background(), "2024-05-01")
	if snapshot == nil {
		t.Fatalf("Refresh failed: %s", client.ErrorInfo())
	}
	if snapshot.TotalUnits != 3150 {
		t.Errorf("expected 3150 units, got %d", snapshot.TotalUnits)
	}
	if snapshot.TotalDaysLabel != "31.50天" {
		t.Errorf("expected label 31.50天, got %q", snapshot.TotalDaysLabel)
	}
	// Prefix matching keeps malformed same-day timestamps and drops
	// yesterday's entries.
	if len(snapshot.HistoryToday) != 2 {
		t.Errorf("expected 2 records for today, got %d", len(snapshot.HistoryToday))
	}
}

func TestBalanceRefreshNilOnFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":7,"message":"not logged in"}`))
	})
	client, _ := testClient(t, handler)

	if snapshot := NewBalanceTracker(client).Refresh(context.Background()); snapshot != nil {
		t.Fatalf("expected nil snapshot, got %+v", snapshot)
	}
	if client.ErrorInfo() == "" {
		t.Error("expected error info to be recorded")
	}
}

func TestFetchCatalogClassifiesPrizes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("needPrizeBrand"); got != "youku,mgtv,iqiyi,tencent,bilibili,other" {
			t.Errorf("unexpected brand filter %q", got)
		}
		w.Write([]byte(`{"code":0,"value":[
			{"prizeId":1,"prizeName":"腾讯视频VIP月卡","prizeBrand":"tencent","needGoldRice":3100,
			 "prizeCode":"PC1","stockStatus":1,"todayStockStatus":1,"prizeType":26,"prizeBatchId":"B1"},
			{"prizeId":2,"prizeName":"优酷VIP会员1分购特权","prizeBrand":"youku","needGoldRice":100,
			 "prizeCode":"PC2","stockStatus":1,"todayStockStatus":1,"prizeType":26,"prizeBatchId":"B2"},
			{"prizeId":3,"prizeName":"芒果TV月卡","prizeBrand":"mgtv","needGoldRice":3100,
			 "prizeCode":"PC3","stockStatus":1,"todayStockStatus":0,"prizeType":26,"prizeBatchId":"B3"},
			{"prizeId":4,"prizeName":"下架奖品","prizeBrand":"other","needGoldRice":3100,
			 "prizeCode":"PC4","stockStatus":0,"todayStockStatus":1,"prizeType":26,"prizeBatchId":"B4"}
		]}`))
	})
	client, _ := testClient(t, handler)

	items, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 stocked items, got %d", len(items))
	}

	byCode := map[string]CatalogItem{}
	for _, item := range items {
		byCode[item.Code] = item
	}
	if got := byCode["PC1"]; got.Exchange != ExchangeDirect || got.Status != StatusAvailable || got.CostDays != 31 {
		t.Errorf("PC1 misclassified: %+v", got)
	}
	if got := byCode["PC2"]; got.Exchange != ExchangePrivilege {
		t.Errorf("PC2 should be a privilege offer: %+v", got)
	}
	if got := byCode["PC3"]; got.Status != StatusOutOfStock {
		t.Errorf("PC3 should be out of stock today: %+v", got)
	}
}

func TestFallbackCatalog(t *testing.T) {
	items := FallbackCatalog()
	if len(items) != 4 {
		t.Fatalf("expected 4 fallback items, got %d", len(items))
	}
	brands := map[string]bool{}
	for _, item := range items {
		brands[item.Brand] = true
		if item.Exchange != ExchangeDirect || item.Status != StatusAvailable {
			t.Errorf("fallback item %s should be direct and available", item.Code)
		}
		if item.CostDays != 31 {
			t.Errorf("fallback item %s should cost 31 days, got %v", item.Code, item.CostDays)
		}
	}
	for _, brand := range []string{"tencent", "iqiyi", "youku", "mgtv"} {
		if !brands[brand] {
			t.Errorf("fallback catalog missing brand %s", brand)
		}
	}
}

func TestNewUserTaskSoftFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":2233,"message":"任务已完成"}`))
	})
	client, _ := testClient(t, handler)

	// Must not panic or surface an error anywhere.
	noDelayCycle(client).RunNewUserTask(context.Background())
}

func TestNewUserTaskClaimsPrize(t *testing.T) {
	claimed := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mp/api/generalActivity/completeTask":
			if got := r.URL.Query().Get("taskCode"); got != "NEW_USER_CAMPAIGN" {
				t.Errorf("expected NEW_USER_CAMPAIGN, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":"nu-1"}`))
		case "/mp/api/generalActivity/luckDraw":
			claimed = true
			if got := r.URL.Query().Get("userTaskId"); got != "nu-1" {
				t.Errorf("expected userTaskId nu-1, got %q", got)
			}
			w.Write([]byte(`{"code":0,"value":{"prizeInfo":{"amount":20,"prizeDesc":"天"}}}`))
		}
	})
	client, _ := testClient(t, handler)

	noDelayCycle(client).RunNewUserTask(context.Background())
	if !claimed {
		t.Error("expected the new-user reward to be claimed")
	}
}
