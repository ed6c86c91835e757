package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxcelerator/internal/model"
	"github.com/amishk599/uxcelerator/internal/requestid"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test failure notice",
	Long:  "Sends a dummy failure notice through the configured notifier to verify the integration works.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	notice := model.FailureNotice{
		RequestID: "test-" + requestid.New(),
		Attempts:  cfg.Recommend.MaxAttempts,
		Goal:      "test notification",
		Err:       errors.New("integration verified, no action needed"),
	}
	if err := n.NotifyFailure(context.Background(), notice); err != nil {
		logger.Error("test notification failed", "error", err)
		return err
	}

	logger.Info("test notification sent", "type", cfg.Notification.Type)
	return nil
}
