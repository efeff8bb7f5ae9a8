package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"branikbot/internal/export"
	"branikbot/internal/storage"
)

func newRepliesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replies",
		Short: "Inspect the reply log",
	}
	cmd.AddCommand(newRepliesExportCmd(a))
	return cmd
}

func newRepliesExportCmd(a *app) *cobra.Command {
	var (
		out   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the reply log to xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(a.cfg.OutputDir, fmt.Sprintf("replies_%s.xlsx", time.Now().Format("20060102_150405")))
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}

			db, err := storage.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.ListReplies(limit)
			if err != nil {
				return err
			}
			if err := export.RepliesToXLSX(rows, out); err != nil {
				return err
			}
			a.logger.Info("replies exported", zap.String("path", out), zap.Int("rows", len(rows)))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default OUTPUT_DIR/replies_<time>.xlsx)")
	cmd.Flags().IntVar(&limit, "limit", 0, "most recent replies to export, 0 for all")
	return cmd
}
