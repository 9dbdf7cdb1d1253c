package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// GetTaskList fetches today's task list and filters it down to browse-group
// tasks. An empty slice with a nil error means the daily quota is used up;
// a non-nil error means the call itself failed.
func (c *Client) GetTaskList(ctx context.Context) ([]Task, error) {
	form := url.Values{}
	form.Set("activityCode", c.vendor.ActivityCode)

	resp := c.PostForm(ctx, "/mp/api/generalActivity/getTaskList", form, nil)
	if resp == nil {
		c.setError("获取任务列表失败：网络请求异常")
		return nil, fmt.Errorf("task list request failed")
	}
	if resp.Code != 0 {
		c.setError("获取任务列表失败：%s", resp.Raw)
		return nil, fmt.Errorf("task list returned code %d", resp.Code)
	}

	var value struct {
		TaskInfoList []Task `json:"taskInfoList"`
	}
	if err := json.Unmarshal(resp.Value, &value); err != nil {
		c.setError("获取任务列表失败：%s", resp.Raw)
		return nil, fmt.Errorf("failed to decode task list: %w", err)
	}

	tasks := make([]Task, 0, len(value.TaskInfoList))
	for _, t := range value.TaskInfoList {
		if strings.Contains(t.TaskName, c.vendor.BrowseTaskMarker) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// GetTask fetches the completion token for a task by its code. This is the
// fallback path when completeTask answers without one; the opaque signing
// parameter is required or the endpoint rejects the call.
func (c *Client) GetTask(ctx context.Context, taskCode string) (string, error) {
	form := url.Values{}
	form.Set("activityCode", c.vendor.ActivityCode)
	form.Set("taskCode", taskCode)
	form.Set("jrairstar_ph", c.vendor.SignParam)

	resp := c.PostForm(ctx, "/mp/api/generalActivity/getTask", form, nil)
	if resp == nil {
		c.setError("获取任务信息失败：网络请求异常")
		return "", fmt.Errorf("get task request failed")
	}
	if resp.Code != 0 {
		c.setError("获取任务信息失败：%s", resp.Raw)
		return "", fmt.Errorf("get task returned code %d", resp.Code)
	}

	var value struct {
		TaskInfo struct {
			UserTaskID json.RawMessage `json:"userTaskId"`
		} `json:"taskInfo"`
	}
	if err := json.Unmarshal(resp.Value, &value); err != nil {
		c.setError("获取任务信息失败：%s", resp.Raw)
		return "", fmt.Errorf("failed to decode task info: %w", err)
	}
	return scalarString(value.TaskInfo.UserTaskID), nil
}

// CompleteTask reports the browse task as watched and returns the completion
// token, or empty when the server withholds one.
func (c *Client) CompleteTask(ctx context.Context, taskID, browseTaskID, browseClickURLID string) (string, error) {
	params := c.baseParams()
	params.Set("isNfcPhone", "true")
	params.Set("channel", c.profile.Channel)
	params.Set("taskId", taskID)
	params.Set("browsTaskId", browseTaskID)
	params.Set("browsClickUrlId", browseClickURLID)
	params.Set("clickEntryType", "undefined")
	params.Set("festivalStatus", "0")

	resp := c.Get(ctx, "/mp/api/generalActivity/completeTask", params, nil)
	if resp == nil {
		c.setError("完成任务失败：网络请求异常")
		return "", fmt.Errorf("complete task request failed")
	}
	if resp.Code != 0 {
		c.setError("完成任务失败：%s", resp.Raw)
		return "", fmt.Errorf("complete task returned code %d", resp.Code)
	}

	return scalarString(resp.Value), nil
}

// ClaimReward claims the reward for a completed task. A non-zero domain code
// is returned as an error; callers treat it as a soft failure because the
// reward is often granted regardless.
func (c *Client) ClaimReward(ctx context.Context, userTaskID string) error {
	params := c.baseParams()
	params.Set("isNfcPhone", "true")
	params.Set("channel", c.profile.Channel)
	params.Set("userTaskId", userTaskID)

	resp := c.Get(ctx, "/mp/api/generalActivity/luckDraw", params, nil)
	if resp == nil {
		c.setError("领取奖励失败：网络请求异常")
		return fmt.Errorf("claim request failed")
	}
	if resp.Code != 0 {
		c.setError("领取奖励失败：%s", resp.Raw)
		return fmt.Errorf("claim returned code %d", resp.Code)
	}
	return nil
}

// CompleteNewUserTask reports the app-trial onboarding task as done and
// returns its completion token. Absence of a token is normal once the task
// has been claimed before.
func (c *Client) CompleteNewUserTask(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("activityCode", c.vendor.ActivityCode)
	params.Set("app", c.profile.App)
	params.Set("oaid", c.profile.OAID)
	params.Set("regId", c.profile.RegID)
	params.Set("versionCode", c.profile.VersionCode)
	params.Set("versionName", c.profile.VersionName)
	params.Set("isNfcPhone", "true")
	params.Set("channel", c.profile.NewUserChannel)
	params.Set("deviceType", "2")
	params.Set("system", "1")
	params.Set("visitEnvironment", "2")
	params.Set("userExtra", c.profile.NewUserExtra)
	params.Set("taskCode", "NEW_USER_CAMPAIGN")
	params.Set("browsTaskId", "")
	params.Set("browsClickUrlId", c.profile.NewUserClickURL)
	params.Set("adInfoId", "")
	params.Set("triggerId", "")

	resp := c.Get(ctx, "/mp/api/generalActivity/completeTask", params, newUserHeaders(c.profile.App))
	if resp == nil {
		return "", fmt.Errorf("new-user task request failed")
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("new-user task returned code %d: %s", resp.Code, truncate(resp.Raw, 200))
	}

	token := scalarString(resp.Value)
	if token == "" {
		return "", fmt.Errorf("new-user task answered without a token: %s", truncate(resp.Raw, 200))
	}
	return token, nil
}

// NewUserPrize describes the reward granted for the app-trial task
type NewUserPrize struct {
	Amount    json.Number `json:"amount"`
	PrizeDesc string      `json:"prizeDesc"`
}

// ClaimNewUserReward claims the app-trial reward and returns the prize info
func (c *Client) ClaimNewUserReward(ctx context.Context, userTaskID string) (*NewUserPrize, error) {
	params := url.Values{}
	params.Set("imei", "")
	params.Set("device", c.profile.Device)
	params.Set("appLimit", c.profile.AppLimit)
	params.Set("activityCode", c.vendor.ActivityCode)
	params.Set("userTaskId", userTaskID)
	params.Set("app", c.profile.App)
	params.Set("oaid", c.profile.OAID)
	params.Set("regId", c.profile.ClaimRegID)
	params.Set("versionCode", c.profile.VersionCode)
	params.Set("versionName", c.profile.VersionName)
	params.Set("isNfcPhone", "true")
	params.Set("channel", c.profile.NewUserChannel)
	params.Set("deviceType", "2")
	params.Set("system", "1")
	params.Set("visitEnvironment", "2")
	params.Set("userExtra", c.profile.NewUserExtra)

	resp := c.Get(ctx, "/mp/api/generalActivity/luckDraw", params, newUserHeaders(c.profile.App))
	if resp == nil {
		return nil, fmt.Errorf("new-user claim request failed")
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("new-user claim returned code %d: %s", resp.Code, truncate(resp.Raw, 200))
	}

	var value struct {
		PrizeInfo NewUserPrize `json:"prizeInfo"`
	}
	if err := json.Unmarshal(resp.Value, &value); err != nil {
		return nil, fmt.Errorf("failed to decode new-user prize: %w", err)
	}
	return &value.PrizeInfo, nil
}

func newUserHeaders(app string) map[string]string {
	return map[string]string{
		"Accept":           "application/json, text/plain, */*",
		"Cache-Control":    "no-cache",
		"X-Requested-With": app,
		"Sec-Fetch-Site":   "same-origin",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Dest":   "empty",
		"Accept-Language":  "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}
