package main

import (
	"fmt"
	"os"

	"github.com/gentlehabits/internal/config"
	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/handler"
	"github.com/gentlehabits/internal/logging"
	"github.com/gentlehabits/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	cfg    config.AppConfig
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:          "gentlehabits",
	Short:        "Gentle habit tracker server",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		built, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = built
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set CONFIG_FILE env)")
	rootCmd.AddCommand(serveCmd, neglectedCmd, exportCmd, importCmd)
}

// openAPI 初始化数据库并按配置构造 handler.API
func openAPI() (*handler.API, error) {
	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return handler.NewAPI(db.DB, handler.Options{
		Passcode: cfg.Passcode,
		Defaults: service.Settings{
			Language:             cfg.DefaultLanguage,
			NeglectThresholdDays: cfg.NeglectThresholdDays,
		},
		Logger: logger,
	})
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
