package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/logging"
	"walletbot/internal/notify"
	"walletbot/internal/qrlogin"
	"walletbot/internal/runner"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wallet",
		Short:         "小米钱包每日浏览任务自动化工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "Settings.ini", "配置文件路径")

	root.AddCommand(newRunCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newAccountsCmd())
	root.AddCommand(newRulesCmd())
	return root
}

// loadConfig reads Settings.ini, falling back to defaults when it is absent
func loadConfig() *config.Config {
	cfg, err := config.LoadFromINI(configPath)
	if err != nil {
		cfg = config.NewDefaultConfig()
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	log := logging.NewLogger("wallet").SetMinLevel(logging.ParseLevel(cfg.LogLevel))
	if !cfg.LoggingEnabled {
		log.SetMinLevel(logging.LogLevelError)
	}
	return log
}

func loadProfile(cfg *config.Config, log *logging.Logger) config.Profile {
	if cfg.ProfileFile == "" {
		return config.DefaultProfile()
	}
	profile, err := config.LoadProfile(cfg.ProfileFile)
	if err != nil {
		log.Warnf("加载设备配置失败，使用默认配置：%v", err)
	}
	return profile
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "为全部已保存账号执行每日任务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log := newLogger(cfg)
			vendor := config.DefaultVendor()
			profile := loadProfile(cfg, log)

			store := credstore.NewStore(cfg.CredentialFile)
			accountRunner := runner.NewAccountRunner(cfg, vendor, profile, nil, log)
			logStore := runner.NewLogStore(cfg.TaskLogDir)

			var notifier runner.Notifier
			if cfg.WebhookURL != "" {
				notifier = notify.NewFeishu(cfg.WebhookURL, log)
			}

			driver := runner.NewBatchDriver(cfg, store, accountRunner, logStore, notifier, nil, log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := driver.RunAll(ctx)
			if err != nil {
				return err
			}
			if summary.Total == 0 {
				fmt.Printf("账号文件 %s 中没有账号，请先运行 wallet login <别名>\n", cfg.CredentialFile)
				return nil
			}
			fmt.Printf("执行完毕：共 %d 个账号，成功 %d，失败 %d\n", summary.Total, summary.Succeeded, summary.Failed)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <别名>",
		Short: "扫码登录并保存长效凭证",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := strings.TrimSpace(args[0])
			if alias == "" {
				return fmt.Errorf("别名不能为空")
			}

			cfg := loadConfig()
			log := newLogger(cfg)
			store := credstore.NewStore(cfg.CredentialFile)

			client := qrlogin.NewClient(config.DefaultVendor(), log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ticket, err := client.Start(ctx)
			if err != nil {
				return fmt.Errorf("获取二维码失败: %w", err)
			}

			fmt.Println("请使用小米手机APP扫描下方二维码登录：")
			qrlogin.RenderQR(os.Stdout, ticket.QRURL)
			fmt.Printf("如果二维码显示不正常，也可浏览器打开此链接: %s\n", ticket.QRURL)

			creds, err := client.Poll(ctx, ticket)
			if err != nil {
				return fmt.Errorf("登录失败: %w", err)
			}

			err = store.Put(credstore.Account{
				Alias:         alias,
				UserID:        creds.UserID,
				PassToken:     creds.PassToken,
				SecurityToken: creds.SecurityToken,
			})
			if err != nil {
				return fmt.Errorf("保存凭证失败: %w", err)
			}

			fmt.Printf("登录成功，账号 %q 已保存（小米ID: %s）\n", alias, creds.UserID)
			return nil
		},
	}
}

func newAccountsCmd() *cobra.Command {
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "管理已保存的账号",
	}

	accounts.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出全部账号",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store := credstore.NewStore(cfg.CredentialFile)

			all, err := store.Load()
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("暂无已保存的账号")
				return nil
			}
			for _, acc := range all {
				fmt.Printf("%s  (小米ID: %s)\n", acc.Alias, acc.UserID)
				for _, rule := range acc.ExchangeRules {
					fmt.Printf("    兑换规则: %s -> %s\n", rule.Type, rule.Phone)
				}
			}
			return nil
		},
	})

	accounts.AddCommand(&cobra.Command{
		Use:   "delete <别名>",
		Short: "删除一个账号",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store := credstore.NewStore(cfg.CredentialFile)

			deleted, err := store.Delete(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("未找到账号 %q", args[0])
			}
			fmt.Printf("账号 %q 已删除\n", args[0])
			return nil
		},
	})

	return accounts
}

func newRulesCmd() *cobra.Command {
	rules := &cobra.Command{
		Use:   "rules",
		Short: "管理会员兑换规则",
	}

	rules.AddCommand(&cobra.Command{
		Use:   "add <别名> <会员类型> <手机号>",
		Short: "为账号添加兑换规则",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store := credstore.NewStore(cfg.CredentialFile)

			rule := credstore.ExchangeRule{Type: args[1], Phone: args[2]}
			if err := store.AddRule(args[0], rule); err != nil {
				return err
			}
			fmt.Printf("已为账号 %q 添加规则 %s -> %s\n", args[0], rule.Type, rule.Phone)
			return nil
		},
	})

	rules.AddCommand(&cobra.Command{
		Use:   "remove <别名> <会员类型>",
		Short: "删除账号的兑换规则",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			store := credstore.NewStore(cfg.CredentialFile)

			if err := store.RemoveRule(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("已删除账号 %q 的 %s 规则\n", args[0], args[1])
			return nil
		},
	})

	return rules
}
