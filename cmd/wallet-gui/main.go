package main

import (
	"log"

	"fyne.io/fyne/v2/app"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/events"
	"walletbot/internal/gui"
	"walletbot/internal/logging"
	"walletbot/internal/notify"
	"walletbot/internal/runner"
)

func main() {
	// Create Fyne application
	myApp := app.NewWithID("com.walletbot.wallet-gui")
	myApp.Settings().SetTheme(&gui.WalletTheme{})

	// Create main window
	mainWindow := myApp.NewWindow("小米钱包每日任务")
	mainWindow.Resize(gui.DefaultWindowSize)

	// Load configuration
	cfg, err := config.LoadFromINI("Settings.ini")
	if err != nil {
		log.Printf("Warning: Failed to load config: %v", err)
		cfg = config.NewDefaultConfig()
	}

	logger := logging.NewLogger("wallet-gui").SetMinLevel(logging.ParseLevel(cfg.LogLevel))

	vendor := config.DefaultVendor()
	profile := config.DefaultProfile()
	if cfg.ProfileFile != "" {
		profile, err = config.LoadProfile(cfg.ProfileFile)
		if err != nil {
			logger.Warnf("加载设备配置失败，使用默认配置：%v", err)
		}
	}

	bus := events.NewEventBus(256)
	store := credstore.NewStore(cfg.CredentialFile)
	logStore := runner.NewLogStore(cfg.TaskLogDir)
	accountRunner := runner.NewAccountRunner(cfg, vendor, profile, bus, logger)

	var notifier runner.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewFeishu(cfg.WebhookURL, logger)
	}

	driver := runner.NewBatchDriver(cfg, store, accountRunner, logStore, notifier, bus, logger)

	// Create GUI controller
	controller := gui.NewController(gui.Deps{
		Config:   cfg,
		Vendor:   vendor,
		Store:    store,
		Driver:   driver,
		LogStore: logStore,
		Bus:      bus,
		Log:      logger,
	}, myApp, mainWindow)

	// Build UI with horizontal tabs
	content := controller.BuildUI()

	// Set content and show
	mainWindow.SetContent(content)
	mainWindow.SetMaster()
	mainWindow.ShowAndRun()

	// Cleanup on exit
	controller.Shutdown()
	bus.Stop()
}
