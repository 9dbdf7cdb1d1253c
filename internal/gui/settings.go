package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/config"
)

// SettingsTab edits the Settings.ini values
type SettingsTab struct {
	ctrl *Controller

	credentialEntry *widget.Entry
	logDirEntry     *widget.Entry
	webhookEntry    *widget.Entry
	browseMinEntry  *widget.Entry
	browseMaxEntry  *widget.Entry
	logLevelSelect  *widget.Select
}

// NewSettingsTab creates the settings tab
func NewSettingsTab(ctrl *Controller) *SettingsTab {
	return &SettingsTab{ctrl: ctrl}
}

// Build constructs the tab content
func (s *SettingsTab) Build() fyne.CanvasObject {
	cfg := s.ctrl.cfg

	s.credentialEntry = widget.NewEntry()
	s.credentialEntry.SetText(cfg.CredentialFile)

	s.logDirEntry = widget.NewEntry()
	s.logDirEntry.SetText(cfg.TaskLogDir)

	s.webhookEntry = widget.NewEntry()
	s.webhookEntry.SetText(cfg.WebhookURL)
	s.webhookEntry.SetPlaceHolder("飞书机器人 Webhook 地址（可选）")

	s.browseMinEntry = widget.NewEntry()
	s.browseMinEntry.SetText(strconv.Itoa(cfg.BrowseDelayMin))
	s.browseMaxEntry = widget.NewEntry()
	s.browseMaxEntry.SetText(strconv.Itoa(cfg.BrowseDelayMax))

	s.logLevelSelect = widget.NewSelect([]string{"DEBUG", "INFO", "WARN", "ERROR"}, nil)
	s.logLevelSelect.SetSelected(cfg.LogLevel)

	form := widget.NewForm(
		widget.NewFormItem("账号文件", s.credentialEntry),
		widget.NewFormItem("日志目录", s.logDirEntry),
		widget.NewFormItem("通知 Webhook", s.webhookEntry),
		widget.NewFormItem("浏览延迟下限（秒）", s.browseMinEntry),
		widget.NewFormItem("浏览延迟上限（秒）", s.browseMaxEntry),
		widget.NewFormItem("日志级别", s.logLevelSelect),
	)

	saveButton := widget.NewButton("保存设置", s.onSave)
	return container.NewVBox(form, saveButton)
}

func (s *SettingsTab) onSave() {
	browseMin, err := strconv.Atoi(s.browseMinEntry.Text)
	if err != nil || browseMin < 0 {
		dialog.ShowError(fmt.Errorf("浏览延迟下限必须是非负整数"), s.ctrl.window)
		return
	}
	browseMax, err := strconv.Atoi(s.browseMaxEntry.Text)
	if err != nil || browseMax < browseMin {
		dialog.ShowError(fmt.Errorf("浏览延迟上限必须不小于下限"), s.ctrl.window)
		return
	}

	cfg := s.ctrl.cfg
	cfg.CredentialFile = s.credentialEntry.Text
	cfg.TaskLogDir = s.logDirEntry.Text
	cfg.WebhookURL = s.webhookEntry.Text
	cfg.BrowseDelayMin = browseMin
	cfg.BrowseDelayMax = browseMax
	cfg.LogLevel = s.logLevelSelect.Selected

	if err := config.SaveToINI(cfg, "Settings.ini"); err != nil {
		dialog.ShowError(err, s.ctrl.window)
		return
	}
	dialog.ShowInformation("设置", "设置已保存，部分选项在下次启动后生效", s.ctrl.window)
}
