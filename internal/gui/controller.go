package gui

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/events"
	"walletbot/internal/logging"
	"walletbot/internal/runner"
)

// Controller manages the GUI state and wires the tabs to the batch driver
type Controller struct {
	cfg      *config.Config
	vendor   config.Vendor
	store    *credstore.Store
	driver   *runner.BatchDriver
	logStore *runner.LogStore
	log      *logging.Logger

	app    fyne.App
	window fyne.Window

	// GUI components
	dashboard   *DashboardTab
	accountsTab *AccountsTab
	resultsTab  *ResultsTab
	settingsTab *SettingsTab
	loginTab    *LoginTab

	contentArea *fyne.Container
	uiBus       *EventBus
}

// Deps bundles the collaborators the GUI needs
type Deps struct {
	Config   *config.Config
	Vendor   config.Vendor
	Store    *credstore.Store
	Driver   *runner.BatchDriver
	LogStore *runner.LogStore
	Bus      events.EventBus
	Log      *logging.Logger
}

// NewController creates a new GUI controller
func NewController(deps Deps, app fyne.App, window fyne.Window) *Controller {
	ctrl := &Controller{
		cfg:      deps.Config,
		vendor:   deps.Vendor,
		store:    deps.Store,
		driver:   deps.Driver,
		logStore: deps.LogStore,
		log:      deps.Log,
		app:      app,
		window:   window,
		uiBus:    NewEventBus(),
	}

	ctrl.uiBus.Start(app)

	ctrl.dashboard = NewDashboardTab(ctrl)
	ctrl.accountsTab = NewAccountsTab(ctrl)
	ctrl.resultsTab = NewResultsTab(ctrl)
	ctrl.settingsTab = NewSettingsTab(ctrl)
	ctrl.loginTab = NewLoginTab(ctrl)

	ctrl.bridgeDomainEvents(deps.Bus)

	ctrl.uiBus.Subscribe(EventTypeDialogError, func(e Event) {
		msg, _ := e.Data["message"].(string)
		dialog.ShowError(errors.New(msg), ctrl.window)
	})

	return ctrl
}

// bridgeDomainEvents forwards batch progress from the domain event bus onto
// the UI bus so widgets update from the main thread.
func (c *Controller) bridgeDomainEvents(bus events.EventBus) {
	if bus == nil {
		return
	}

	bus.Subscribe(events.EventTypeLogLine, func(e events.Event) {
		alias, _ := e.Data["alias"].(string)
		line, _ := e.Data["line"].(string)
		c.uiBus.Publish(Event{Type: EventTypeLogAdd, Data: map[string]interface{}{
			"alias": alias,
			"line":  line,
		}})
	})

	bus.Subscribe(events.EventTypeAccountStarted, func(e events.Event) {
		c.uiBus.Publish(Event{Type: EventTypeStatusUpdate, Data: map[string]interface{}{
			"alias": e.Data["alias"],
			"index": e.Data["index"],
			"total": e.Data["total"],
		}})
	})

	bus.Subscribe(events.EventTypeAccountCompleted, func(e events.Event) {
		c.uiBus.Publish(Event{Type: EventTypeResultsRefresh, Data: e.Data})
	})

	bus.Subscribe(events.EventTypeBatchCompleted, func(e events.Event) {
		c.uiBus.Publish(Event{Type: EventTypeRunStateChanged, Data: map[string]interface{}{
			"running":   false,
			"succeeded": e.Data["succeeded"],
			"failed":    e.Data["failed"],
		}})
	})
}

// BuildUI constructs the main UI with horizontal tabs
func (c *Controller) BuildUI() fyne.CanvasObject {
	tabButtons := container.NewHBox(
		widget.NewButton("任务面板", func() { c.switchTab(0) }),
		widget.NewButton("账号管理", func() { c.switchTab(1) }),
		widget.NewButton("运行结果", func() { c.switchTab(2) }),
		widget.NewButton("设置", func() { c.switchTab(3) }),
		widget.NewButton("扫码登录", func() { c.switchTab(4) }),
	)

	c.contentArea = container.NewStack(
		c.dashboard.Build(),
		c.accountsTab.Build(),
		c.resultsTab.Build(),
		c.settingsTab.Build(),
		c.loginTab.Build(),
	)

	c.showTab(0)

	return container.NewBorder(
		tabButtons,
		nil,
		nil,
		nil,
		c.contentArea,
	)
}

func (c *Controller) switchTab(tabIndex int) {
	c.showTab(tabIndex)

	// Tabs that mirror files on disk reload on entry.
	switch tabIndex {
	case 1:
		c.accountsTab.Reload()
	case 2:
		c.resultsTab.Reload()
	}
}

func (c *Controller) showTab(tabIndex int) {
	if c.contentArea == nil {
		return
	}
	for i, obj := range c.contentArea.Objects {
		if i == tabIndex {
			obj.Show()
		} else {
			obj.Hide()
		}
	}
	c.contentArea.Refresh()
}

// Shutdown stops background machinery on exit
func (c *Controller) Shutdown() {
	c.uiBus.Stop()
}
