package gui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/credstore"
	"walletbot/internal/qrlogin"
)

// LoginTab drives the scan-to-login flow for adding or refreshing accounts
type LoginTab struct {
	ctrl *Controller

	aliasEntry  *widget.Entry
	qrText      *widget.Label
	statusLabel *widget.Label
	startButton *widget.Button
}

// NewLoginTab creates the login tab
func NewLoginTab(ctrl *Controller) *LoginTab {
	return &LoginTab{ctrl: ctrl}
}

// Build constructs the tab content
func (l *LoginTab) Build() fyne.CanvasObject {
	l.aliasEntry = widget.NewEntry()
	l.aliasEntry.SetPlaceHolder("账号别名，例如 my_account_1")

	l.qrText = widget.NewLabel("")
	l.qrText.TextStyle = fyne.TextStyle{Monospace: true}

	l.statusLabel = widget.NewLabel("输入别名并获取二维码，然后用手机扫码登录")
	l.startButton = widget.NewButton("获取登录二维码", l.onStart)

	header := container.NewVBox(l.aliasEntry, l.startButton, l.statusLabel)
	return container.NewBorder(header, nil, nil, nil, container.NewScroll(l.qrText))
}

func (l *LoginTab) setStatus(text string) {
	fyne.Do(func() {
		l.statusLabel.SetText(text)
	})
}

func (l *LoginTab) onStart() {
	alias := strings.TrimSpace(l.aliasEntry.Text)
	if alias == "" {
		l.statusLabel.SetText("请先输入账号别名")
		return
	}

	l.startButton.Disable()
	l.statusLabel.SetText("正在获取二维码...")

	go func() {
		defer fyne.Do(l.startButton.Enable)

		client := qrlogin.NewClient(l.ctrl.vendor, l.ctrl.log)
		ticket, err := client.Start(context.Background())
		if err != nil {
			l.setStatus(fmt.Sprintf("获取二维码失败：%v", err))
			return
		}

		var buf bytes.Buffer
		qrlogin.RenderQR(&buf, ticket.QRURL)
		qr := buf.String()
		fyne.Do(func() {
			l.qrText.SetText(qr)
		})
		l.setStatus("请使用小米手机APP扫描二维码登录")

		creds, err := client.Poll(context.Background(), ticket)
		if err != nil {
			l.setStatus(fmt.Sprintf("登录失败：%v", err))
			return
		}

		err = l.ctrl.store.Put(credstore.Account{
			Alias:         alias,
			UserID:        creds.UserID,
			PassToken:     creds.PassToken,
			SecurityToken: creds.SecurityToken,
		})
		if err != nil {
			l.setStatus(fmt.Sprintf("保存凭证失败：%v", err))
			return
		}

		l.setStatus(fmt.Sprintf("登录成功，账号 %s 已保存（ID: %s）", alias, creds.UserID))
		fyne.Do(func() {
			l.qrText.SetText("")
			l.ctrl.accountsTab.Reload()
		})
	}()
}
