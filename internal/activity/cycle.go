package activity

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"walletbot/internal/config"
	"walletbot/internal/logging"
)

// TaskCycle drives one round of the browse-task workflow: pick a task,
// simulate the browse dwell, report completion, claim the reward. Delays are
// randomized within the configured bounds to pace like a person.
type TaskCycle struct {
	client *Client
	log    *logging.Logger

	browseMin, browseMax int
	stepMin, stepMax     int

	// Browse task id from the last task list that carried one. Later list
	// entries sometimes omit it, so the cached value is reused.
	cachedTID string

	sleep func(ctx context.Context, d time.Duration) error
	rng   *rand.Rand
}

// NewTaskCycle creates a cycle using the pacing bounds from cfg
func NewTaskCycle(client *Client, cfg *config.Config, log *logging.Logger) *TaskCycle {
	return &TaskCycle{
		client:    client,
		log:       log,
		browseMin: cfg.BrowseDelayMin,
		browseMax: cfg.BrowseDelayMax,
		stepMin:   cfg.StepDelayMin,
		stepMax:   cfg.StepDelayMax,
		sleep:     sleepCtx,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (tc *TaskCycle) delay(ctx context.Context, minSec, maxSec int) error {
	if maxSec < minSec {
		maxSec = minSec
	}
	secs := minSec
	if maxSec > minSec {
		secs += tc.rng.Intn(maxSec - minSec + 1)
	}
	return tc.sleep(ctx, time.Duration(secs)*time.Second)
}

// RunRound executes one browse-task round. A nil error with Exhausted set
// means no task is available today; an error is returned only when the round
// cannot proceed at all (missing browse task id or cancelled context).
func (tc *TaskCycle) RunRound(ctx context.Context) (RoundOutcome, error) {
	tasks, err := tc.client.GetTaskList(ctx)
	if err != nil {
		return RoundOutcome{Exhausted: true}, nil
	}
	if len(tasks) == 0 {
		tc.log.Info("未找到可执行的任务列表，可能今日任务已完成")
		return RoundOutcome{Exhausted: true}, nil
	}

	task := tasks[0]
	var clickURLID string
	if task.URLInfo != nil {
		if id := task.URLInfo.ID.String(); id != "" {
			tc.cachedTID = id
		}
		clickURLID = task.URLInfo.BrowseClickURL.String()
	}
	if tc.cachedTID == "" {
		return RoundOutcome{}, fmt.Errorf("task %s carries no browse task id", task.TaskID)
	}

	// Dwell as if actually watching before reporting completion.
	if err := tc.delay(ctx, tc.browseMin, tc.browseMax); err != nil {
		return RoundOutcome{}, err
	}

	token, err := tc.client.CompleteTask(ctx, task.TaskID.String(), tc.cachedTID, clickURLID)
	if err != nil {
		tc.log.Warnf("完成任务未成功：%v", err)
	}
	if err := tc.delay(ctx, tc.stepMin, tc.stepMax); err != nil {
		return RoundOutcome{}, err
	}

	if token == "" {
		token, err = tc.client.GetTask(ctx, task.TaskCode)
		if err != nil {
			tc.log.Warnf("获取任务信息未成功：%v", err)
		}
		if err := tc.delay(ctx, tc.stepMin, tc.stepMax); err != nil {
			return RoundOutcome{}, err
		}
	}

	if token == "" {
		tc.log.Warn("未能获取 userTaskId，无法领取本轮奖励")
		return RoundOutcome{}, nil
	}

	if err := tc.client.ClaimReward(ctx, token); err != nil {
		// Rewards are frequently granted despite a non-zero claim code.
		tc.log.Warnf("领取奖励返回异常：%v", err)
	}
	if err := tc.delay(ctx, tc.stepMin, tc.stepMax); err != nil {
		return RoundOutcome{Claimed: true}, err
	}
	return RoundOutcome{Claimed: true}, nil
}

// RunNewUserTask attempts the one-time app-trial task. All failures are soft:
// most accounts have already consumed it.
func (tc *TaskCycle) RunNewUserTask(ctx context.Context) {
	tc.log.Info("尝试完成应用下载试用任务")

	token, err := tc.client.CompleteNewUserTask(ctx)
	if err != nil {
		tc.log.Infof("应用下载试用任务已完成或不可用：%v", err)
		return
	}

	if err := tc.sleep(ctx, 2*time.Second); err != nil {
		return
	}
	// The claim endpoint rejects requests arriving too soon after completion.
	if err := tc.sleep(ctx, 5*time.Second); err != nil {
		return
	}

	prize, err := tc.client.ClaimNewUserReward(ctx, token)
	if err != nil {
		tc.log.Warnf("领取应用下载试用奖励失败：%v", err)
		return
	}
	tc.log.Infof("领取应用下载试用奖励成功：获得%s %s", prize.Amount.String(), prize.PrizeDesc)
}
