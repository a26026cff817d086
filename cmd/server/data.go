package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/locale"
	"github.com/gentlehabits/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var neglectedThreshold int

var neglectedCmd = &cobra.Command{
	Use:   "neglected",
	Short: "List habits that deserve a welcome-back nudge",
	RunE:  runNeglected,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all habits and entries as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import habits and entries from a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	neglectedCmd.Flags().IntVar(&neglectedThreshold, "threshold", 0, "Days without entries before a habit counts as neglected (default: settings value)")
}

func runNeglected(cmd *cobra.Command, args []string) error {
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	settingsSvc := service.NewSettingService(db.DB, service.Settings{
		Language:             cfg.DefaultLanguage,
		NeglectThresholdDays: cfg.NeglectThresholdDays,
	})
	settings, err := settingsSvc.GetSettings()
	if err != nil {
		return err
	}

	threshold := neglectedThreshold
	if threshold <= 0 {
		threshold = settings.NeglectThresholdDays
	}

	habits := service.NewHabitService(db.DB)
	entries := service.NewEntryService(db.DB)
	neglected, err := service.NewProgressService(habits, entries).Neglected(time.Now(), threshold)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(neglected) == 0 {
		fmt.Fprintln(out, locale.Pick(settings.Language, "Everything is on track.", "一切都在节奏里。"))
		return nil
	}
	for _, item := range neglected {
		fmt.Fprintf(out, "%s %s\n", item.Habit.Emoji, locale.WelcomeBack(settings.Language, item.Habit.Name, item.DaysSinceLastEntry))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	doc, err := service.NewBackupService(db.DB).Export()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create backup file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := service.EncodeBackup(w, doc); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	logger.Info("backup exported",
		zap.String("export_id", doc.ExportID),
		zap.Int("habits", len(doc.Habits)),
		zap.Int("entries", len(doc.Entries)),
	)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	doc, err := service.DecodeBackup(f)
	if err != nil {
		return err
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	result, err := service.NewBackupService(db.DB).Import(doc)
	if err != nil {
		return err
	}

	logger.Info("backup imported", zap.Int("habits", result.Habits), zap.Int("entries", result.Entries))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d habits, %d entries\n", result.Habits, result.Entries)
	return nil
}
