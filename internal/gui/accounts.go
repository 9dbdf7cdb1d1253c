package gui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/credstore"
)

// membershipTypes are the brands offered in the redemption rule form
var membershipTypes = []string{"tencent", "iqiyi", "youku", "mgtv", "bilibili"}

// AccountsTab lists stored accounts and manages their redemption rules
type AccountsTab struct {
	ctrl *Controller

	accountsMu sync.Mutex
	accounts   []credstore.Account

	accountList *widget.List

	// Rule form
	accountSelect *widget.Select
	typeSelect    *widget.Select
	phoneEntry    *widget.Entry
}

// NewAccountsTab creates the accounts tab
func NewAccountsTab(ctrl *Controller) *AccountsTab {
	return &AccountsTab{ctrl: ctrl}
}

// Build constructs the tab content
func (a *AccountsTab) Build() fyne.CanvasObject {
	a.accountList = widget.NewList(
		func() int {
			a.accountsMu.Lock()
			defer a.accountsMu.Unlock()
			return len(a.accounts)
		},
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				widget.NewButton("删除", nil),
				widget.NewLabel("account"),
			)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			a.accountsMu.Lock()
			if id < 0 || id >= len(a.accounts) {
				a.accountsMu.Unlock()
				return
			}
			account := a.accounts[id]
			a.accountsMu.Unlock()

			box := item.(*fyne.Container)
			label := box.Objects[0].(*widget.Label)
			label.SetText(describeAccount(account))

			deleteButton := box.Objects[1].(*widget.Button)
			deleteButton.OnTapped = func() { a.onDelete(account.Alias) }
		},
	)

	a.accountSelect = widget.NewSelect(nil, nil)
	a.typeSelect = widget.NewSelect(membershipTypes, nil)
	a.phoneEntry = widget.NewEntry()
	a.phoneEntry.SetPlaceHolder("接收兑换码的手机号")

	addRuleButton := widget.NewButton("添加兑换规则", a.onAddRule)
	removeRuleButton := widget.NewButton("删除兑换规则", a.onRemoveRule)

	form := container.NewVBox(
		widget.NewLabel("会员兑换规则"),
		a.accountSelect,
		a.typeSelect,
		a.phoneEntry,
		container.NewHBox(addRuleButton, removeRuleButton),
	)

	a.Reload()

	return container.NewBorder(nil, form, nil, nil, a.accountList)
}

func describeAccount(account credstore.Account) string {
	var rules []string
	for _, r := range account.ExchangeRules {
		rules = append(rules, fmt.Sprintf("%s->%s", r.Type, r.Phone))
	}
	desc := fmt.Sprintf("%s (ID: %s)", account.Alias, account.UserID)
	if len(rules) > 0 {
		desc += "  兑换: " + strings.Join(rules, ", ")
	}
	return desc
}

// Reload re-reads the credential file and refreshes the widgets
func (a *AccountsTab) Reload() {
	accounts, err := a.ctrl.store.Load()
	if err != nil {
		a.ctrl.log.Error("读取账号配置失败", err)
		accounts = nil
	}

	a.accountsMu.Lock()
	a.accounts = accounts
	a.accountsMu.Unlock()

	aliases := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		aliases = append(aliases, acc.Alias)
	}
	a.accountSelect.Options = aliases
	a.accountSelect.Refresh()
	if a.accountList != nil {
		a.accountList.Refresh()
	}
}

func (a *AccountsTab) onDelete(alias string) {
	dialog.ShowConfirm("删除账号", fmt.Sprintf("确定删除账号 %q 吗？", alias), func(ok bool) {
		if !ok {
			return
		}
		if _, err := a.ctrl.store.Delete(alias); err != nil {
			dialog.ShowError(err, a.ctrl.window)
			return
		}
		a.Reload()
	}, a.ctrl.window)
}

func (a *AccountsTab) onAddRule() {
	alias := a.accountSelect.Selected
	membershipType := a.typeSelect.Selected
	phone := strings.TrimSpace(a.phoneEntry.Text)

	if alias == "" || membershipType == "" || phone == "" {
		dialog.ShowError(fmt.Errorf("请选择账号、会员类型并填写手机号"), a.ctrl.window)
		return
	}

	err := a.ctrl.store.AddRule(alias, credstore.ExchangeRule{Type: membershipType, Phone: phone})
	if err != nil {
		dialog.ShowError(err, a.ctrl.window)
		return
	}
	a.phoneEntry.SetText("")
	a.Reload()
}

func (a *AccountsTab) onRemoveRule() {
	alias := a.accountSelect.Selected
	membershipType := a.typeSelect.Selected

	if alias == "" || membershipType == "" {
		dialog.ShowError(fmt.Errorf("请选择账号和会员类型"), a.ctrl.window)
		return
	}

	if err := a.ctrl.store.RemoveRule(alias, membershipType); err != nil {
		dialog.ShowError(err, a.ctrl.window)
		return
	}
	a.Reload()
}
