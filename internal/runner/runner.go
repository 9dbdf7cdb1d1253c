package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"walletbot/internal/activity"
	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/events"
	"walletbot/internal/logging"
	"walletbot/internal/redeem"
	"walletbot/internal/session"
)

// roundCount is how many browse-task rounds one run attempts. The campaign
// caps daily browse rewards at two.
const roundCount = 2

type sessionExchanger interface {
	Exchange(ctx context.Context, cred credstore.Account) (*session.Session, error)
}

// AccountRunner executes the full daily workflow for a single account:
// session exchange, new-user trial, browse rounds, balance refresh and
// redemption. Every run produces a result record regardless of outcome.
type AccountRunner struct {
	cfg     *config.Config
	vendor  config.Vendor
	profile config.Profile
	log     *logging.Logger
	bus     events.EventBus

	exch sessionExchanger
	now  func() time.Time
}

// NewAccountRunner creates a runner. bus may be nil when no live display is
// attached.
func NewAccountRunner(cfg *config.Config, vendor config.Vendor, profile config.Profile, bus events.EventBus, log *logging.Logger) *AccountRunner {
	return &AccountRunner{
		cfg:     cfg,
		vendor:  vendor,
		profile: profile,
		log:     log,
		bus:     bus,
		exch:    session.NewExchanger(vendor, log),
		now:     time.Now,
	}
}

// busLogWriter forwards formatted log lines to the event bus for live
// display.
type busLogWriter struct {
	bus   events.EventBus
	alias string
}

func (w busLogWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		w.bus.Publish(events.NewLogLineEvent(w.alias, line))
	}
	return len(p), nil
}

func (r *AccountRunner) publish(event events.Event) {
	if r.bus != nil {
		r.bus.Publish(event)
	}
}

// Run processes one account end to end. It never returns an error: all
// failures, including panics, are captured in the result record so a bad
// account cannot stop the batch.
func (r *AccountRunner) Run(ctx context.Context, cred credstore.Account) (result *AccountResult) {
	result = &AccountResult{
		Alias:           cred.Alias,
		UserID:          cred.UserID,
		StartTime:       r.now().Format(timeLayout),
		Logs:            []string{},
		ExchangeResults: []redeem.Result{},
	}

	recorder := logging.NewRecorder()
	log := r.log.Named(cred.Alias).AddOutput(recorder)
	if r.bus != nil {
		log.AddOutput(busLogWriter{bus: r.bus, alias: cred.Alias})
	}

	defer func() {
		if rec := recover(); rec != nil {
			result.Error = fmt.Sprintf("执行主程序时发生未知异常: %v", rec)
			result.Success = false
		}
		result.EndTime = r.now().Format(timeLayout)
		result.Logs = recorder.Lines()
	}()

	log.Infof("正在处理账号: %s (ID: %s)", cred.Alias, cred.UserID)

	if cred.Alias == "" || cred.UserID == "" || cred.PassToken == "" {
		result.Error = "账号配置不完整，已跳过"
		log.Warn(result.Error)
		return result
	}

	sess, err := r.exch.Exchange(ctx, cred)
	if err != nil {
		result.Error = fmt.Sprintf("获取会话 Cookie 失败: %v", err)
		log.Warn(result.Error)
		return result
	}
	if sess == nil {
		result.Error = "获取会话 Cookie 失败，请重新登录刷新凭证"
		log.Warn(result.Error)
		return result
	}
	log.Info("会话 Cookie 获取成功")

	client := activity.NewClient(r.vendor, r.profile, sess, log)
	tracker := activity.NewBalanceTracker(client)

	before := tracker.Refresh(ctx)
	if before == nil {
		result.Error = client.ErrorInfo()
		return result
	}
	result.BalanceBefore = before.TotalDays
	log.Infof("任务前可兑换视频天数：%s", before.TotalDaysLabel)

	cycle := activity.NewTaskCycle(client, r.cfg, log)
	cycle.RunNewUserTask(ctx)

	for round := 1; round <= roundCount; round++ {
		log.Infof("开始第 %d 轮浏览任务", round)

		outcome, err := cycle.RunRound(ctx)
		if err != nil {
			// A broken round stops further rounds only; the balance refresh
			// and redemption still run on whatever was earned.
			result.Error = fmt.Sprintf("第 %d 轮任务中断: %v", round, err)
			log.Warn(result.Error)
			break
		}
		r.publish(events.NewRoundCompletedEvent(cred.Alias, round, outcome.Claimed))
		if outcome.Exhausted {
			break
		}
	}

	log.Info("所有任务轮次执行完毕，正在刷新最终数据")
	snapshot := tracker.Refresh(ctx)
	if snapshot == nil {
		if result.Error == "" {
			result.Error = client.ErrorInfo()
		}
		return result
	}
	result.TotalDays = snapshot.TotalDays
	result.TotalDaysLabel = snapshot.TotalDaysLabel
	result.HistoryToday = snapshot.HistoryToday
	log.Infof("当前可兑换视频天数：%s", snapshot.TotalDaysLabel)

	if len(cred.ExchangeRules) > 0 {
		log.Infof("检测到 %d 个会员兑换配置", len(cred.ExchangeRules))
		matcher := redeem.NewMatcher(client, log)
		result.ExchangeResults = matcher.Redeem(ctx, cred.ExchangeRules, snapshot.TotalDays)
	} else {
		log.Info("未配置会员兑换")
	}

	result.Success = result.Error == ""
	if result.Success {
		// Soft protocol failures recorded mid-run still go into the report.
		result.Error = client.ErrorInfo()
	}
	return result
}
