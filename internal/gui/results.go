package gui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/runner"
)

// ResultsTab lists stored run results, newest first, with a detail view
type ResultsTab struct {
	ctrl *Controller

	resultsMu sync.Mutex
	results   []*runner.AccountResult

	resultList *widget.List
}

// NewResultsTab creates the results tab
func NewResultsTab(ctrl *Controller) *ResultsTab {
	return &ResultsTab{ctrl: ctrl}
}

// Build constructs the tab content
func (r *ResultsTab) Build() fyne.CanvasObject {
	r.resultList = widget.NewList(
		func() int {
			r.resultsMu.Lock()
			defer r.resultsMu.Unlock()
			return len(r.results)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("result")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			result := r.resultAt(id)
			if result == nil {
				return
			}
			status := "成功"
			if !result.Success {
				status = "失败"
			}
			item.(*widget.Label).SetText(fmt.Sprintf("[%s] %s - 账号 %s (%s)",
				status, result.StartTime, result.Alias, result.TotalDaysLabel))
		},
	)
	r.resultList.OnSelected = func(id widget.ListItemID) {
		defer r.resultList.UnselectAll()
		result := r.resultAt(id)
		if result == nil {
			return
		}
		r.showDetail(result)
	}

	// New results appear as accounts finish.
	r.ctrl.uiBus.Subscribe(EventTypeResultsRefresh, func(Event) {
		r.Reload()
	})

	refreshButton := widget.NewButton("刷新", r.Reload)
	return container.NewBorder(container.NewHBox(refreshButton), nil, nil, nil, r.resultList)
}

func (r *ResultsTab) resultAt(id int) *runner.AccountResult {
	r.resultsMu.Lock()
	defer r.resultsMu.Unlock()
	if id < 0 || id >= len(r.results) {
		return nil
	}
	return r.results[id]
}

// Reload re-reads the task log directory
func (r *ResultsTab) Reload() {
	results, err := r.ctrl.logStore.LoadAll()
	if err != nil {
		r.ctrl.log.Error("读取任务日志失败", err)
		return
	}

	r.resultsMu.Lock()
	r.results = results
	r.resultsMu.Unlock()

	if r.resultList != nil {
		r.resultList.Refresh()
	}
}

func (r *ResultsTab) showDetail(result *runner.AccountResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "账号: %s\n用户ID: %s\n", result.Alias, result.UserID)
	fmt.Fprintf(&b, "开始: %s\n结束: %s\n", result.StartTime, result.EndTime)
	if result.Error != "" {
		fmt.Fprintf(&b, "异常: %s\n", result.Error)
	}
	b.WriteString("\n")
	b.WriteString(runner.BuildReport(result))
	b.WriteString("\n\n执行日志:\n")
	for _, line := range result.Logs {
		b.WriteString(line)
		b.WriteString("\n")
	}

	detail := widget.NewLabel(b.String())
	detail.Wrapping = fyne.TextWrapWord
	scroll := container.NewScroll(detail)
	scroll.SetMinSize(fyne.NewSize(640, 480))

	dialog.ShowCustom(fmt.Sprintf("账号 %s 执行详情", result.Alias), "关闭", scroll, r.ctrl.window)
}
