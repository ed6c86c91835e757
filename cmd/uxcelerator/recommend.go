package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	htmlFile string
	goal     string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get suggestions for one page and print them",
	Long:  "One-shot run of the recommendation pipeline: reads markup from --file (or stdin), prints the suggestions as JSON, exits.",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&htmlFile, "file", "f", "", "path to the page markup (default: stdin)")
	recommendCmd.Flags().StringVarP(&goal, "goal", "g", "", "what visitors want to achieve on the page")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	var html []byte
	if htmlFile == "" {
		html, err = io.ReadAll(cmd.InOrStdin())
	} else {
		html, err = os.ReadFile(htmlFile)
	}
	if err != nil {
		return fmt.Errorf("read markup: %w", err)
	}

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	suggestions, err := svc.Recommend(ctx, string(html), goal)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(suggestions)
}
