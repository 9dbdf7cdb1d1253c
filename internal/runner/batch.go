package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/events"
	"walletbot/internal/logging"
)

// ErrBatchInFlight is returned when a batch run is requested while another
// one is still running.
var ErrBatchInFlight = errors.New("a batch run is already in progress")

// Notifier pushes a finished account report to an external channel
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// BatchDriver runs the daily workflow for every stored account, one at a
// time. Accounts are processed sequentially with a randomized pause between
// them; the campaign backend is known to flag parallel traffic from one IP.
type BatchDriver struct {
	cfg      *config.Config
	store    *credstore.Store
	runner   *AccountRunner
	logStore *LogStore
	notifier Notifier
	bus      events.EventBus
	log      *logging.Logger

	running atomic.Bool
	rng     *rand.Rand
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewBatchDriver creates a driver. notifier and bus may be nil.
func NewBatchDriver(cfg *config.Config, store *credstore.Store, runner *AccountRunner, logStore *LogStore, notifier Notifier, bus events.EventBus, log *logging.Logger) *BatchDriver {
	return &BatchDriver{
		cfg:      cfg,
		store:    store,
		runner:   runner,
		logStore: logStore,
		notifier: notifier,
		bus:      bus,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
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

// Running reports whether a batch run is in progress
func (d *BatchDriver) Running() bool {
	return d.running.Load()
}

func (d *BatchDriver) publish(event events.Event) {
	if d.bus != nil {
		d.bus.Publish(event)
	}
}

// RunAll processes every stored account once. Only one batch may run at a
// time; concurrent calls fail with ErrBatchInFlight. A cancelled context
// stops between accounts and returns the partial summary.
func (d *BatchDriver) RunAll(ctx context.Context) (*BatchSummary, error) {
	if !d.running.CompareAndSwap(false, true) {
		return nil, ErrBatchInFlight
	}
	defer d.running.Store(false)

	accounts, err := d.store.Load()
	if err != nil {
		d.log.Error("无法读取账号配置", err)
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		d.log.Info("配置文件中没有账号")
		return &BatchSummary{}, nil
	}

	d.log.Infof("开始执行每日任务，共 %d 个账号", len(accounts))
	d.publish(events.NewBatchStartedEvent(len(accounts)))

	summary := &BatchSummary{Total: len(accounts)}
	for i, cred := range accounts {
		d.publish(events.NewAccountStartedEvent(cred.Alias, i+1, len(accounts)))

		result := d.runner.Run(ctx, cred)
		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		d.finishAccount(ctx, cred, result)
		d.publish(events.NewAccountCompletedEvent(cred.Alias, result.Success, result.Error))

		if ctx.Err() != nil {
			d.log.Warn("批量执行被取消")
			break
		}
		if i < len(accounts)-1 {
			pause := time.Duration(d.rng.Intn(d.cfg.AccountDelayMax+1)) * time.Second
			d.log.Infof("随机延迟 %d 秒后处理下一个账号", int(pause.Seconds()))
			if err := d.sleep(ctx, pause); err != nil {
				break
			}
		}
	}

	d.log.Infof("每日任务执行完毕：成功 %d，失败 %d", summary.Succeeded, summary.Failed)
	d.publish(events.NewBatchCompletedEvent(summary.Succeeded, summary.Failed))
	return summary, nil
}

// finishAccount persists and broadcasts one finished result. Persistence
// failures are logged and do not affect the batch.
func (d *BatchDriver) finishAccount(ctx context.Context, cred credstore.Account, result *AccountResult) {
	if d.logStore != nil {
		if _, err := d.logStore.Save(result); err != nil {
			d.log.Error("保存任务日志失败", err)
		}
	}

	report := BuildReport(result)
	if err := d.store.SetLog(cred.Alias, report); err != nil {
		d.log.Error("更新账号日志失败", err)
	}

	if d.notifier != nil {
		if err := d.notifier.Send(ctx, report); err != nil {
			d.log.Error("发送通知失败", err)
		}
	}
}
