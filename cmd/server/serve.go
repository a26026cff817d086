package main

import (
	"github.com/gentlehabits/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(cfg.GinMode)

	api, err := openAPI()
	if err != nil {
		return err
	}

	if !cfg.PasscodeEnabled() {
		logger.Warn("passcode not configured, API is open to anyone who can reach it")
	}

	r := router.SetupRouter(api, cfg.SessionSecret)
	logger.Info("server starting", zap.String("addr", cfg.ListenAddr), zap.String("database", cfg.DatabasePath))
	return r.Run(cfg.ListenAddr)
}
