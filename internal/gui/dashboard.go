package gui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/runner"
)

// maxLiveLogLines bounds the live feed so a long batch cannot grow the UI
// without limit.
const maxLiveLogLines = 500

// DashboardTab shows batch controls, progress and the live log feed
type DashboardTab struct {
	ctrl *Controller

	statusLabel *widget.Label
	runButton   *widget.Button
	logList     *widget.List

	logsMu sync.Mutex
	logs   []string

	cancelRun context.CancelFunc
}

// NewDashboardTab creates the dashboard tab
func NewDashboardTab(ctrl *Controller) *DashboardTab {
	return &DashboardTab{ctrl: ctrl}
}

// Build constructs the tab content
func (d *DashboardTab) Build() fyne.CanvasObject {
	d.statusLabel = widget.NewLabel("就绪")
	d.runButton = widget.NewButton("执行全部任务", d.onRunAll)
	stopButton := widget.NewButton("停止", d.onStop)

	d.logList = widget.NewList(
		func() int {
			d.logsMu.Lock()
			defer d.logsMu.Unlock()
			return len(d.logs)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("log line")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			d.logsMu.Lock()
			defer d.logsMu.Unlock()
			if id < 0 || id >= len(d.logs) {
				return
			}
			item.(*widget.Label).SetText(d.logs[id])
		},
	)

	d.subscribe()

	header := container.NewHBox(d.runButton, stopButton, d.statusLabel)
	return container.NewBorder(header, nil, nil, nil, d.logList)
}

func (d *DashboardTab) subscribe() {
	d.ctrl.uiBus.Subscribe(EventTypeLogAdd, func(e Event) {
		alias, _ := e.Data["alias"].(string)
		line, _ := e.Data["line"].(string)

		d.logsMu.Lock()
		d.logs = append(d.logs, fmt.Sprintf("[%s] %s", alias, line))
		if len(d.logs) > maxLiveLogLines {
			d.logs = d.logs[len(d.logs)-maxLiveLogLines:]
		}
		count := len(d.logs)
		d.logsMu.Unlock()

		d.logList.Refresh()
		d.logList.ScrollTo(count - 1)
	})

	d.ctrl.uiBus.Subscribe(EventTypeStatusUpdate, func(e Event) {
		alias, _ := e.Data["alias"].(string)
		index, _ := e.Data["index"].(int)
		total, _ := e.Data["total"].(int)
		d.statusLabel.SetText(fmt.Sprintf("正在执行：%d/%d - 账号 %s", index, total, alias))
	})

	d.ctrl.uiBus.Subscribe(EventTypeRunStateChanged, func(e Event) {
		if running, _ := e.Data["running"].(bool); running {
			return
		}
		succeeded, _ := e.Data["succeeded"].(int)
		failed, _ := e.Data["failed"].(int)
		d.statusLabel.SetText(fmt.Sprintf("所有任务执行完成 - 成功: %d, 失败: %d", succeeded, failed))
		d.runButton.Enable()
	})
}

// onRunAll launches the batch in the background. The button stays disabled
// until the batch completion event arrives.
func (d *DashboardTab) onRunAll() {
	d.runButton.Disable()
	d.statusLabel.SetText("开始执行任务...")

	d.logsMu.Lock()
	d.logs = nil
	d.logsMu.Unlock()
	d.logList.Refresh()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancelRun = cancel

	go func() {
		defer cancel()
		_, err := d.ctrl.driver.RunAll(ctx)
		if err == runner.ErrBatchInFlight {
			d.ctrl.uiBus.Publish(Event{Type: EventTypeDialogError, Data: map[string]interface{}{
				"message": "已有任务在执行中",
			}})
		}
		// Completion status arrives via the batch completed event; a
		// load failure just re-enables the button.
		if err != nil {
			d.ctrl.uiBus.Publish(Event{Type: EventTypeRunStateChanged, Data: map[string]interface{}{
				"running": false,
			}})
		}
	}()
}

func (d *DashboardTab) onStop() {
	if d.cancelRun != nil {
		d.cancelRun()
		d.statusLabel.SetText("正在停止，当前账号完成后结束...")
	}
}
