package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sovcrm/crm-cli/internal/fileio"
	"github.com/sovcrm/crm-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export leads to a JSON or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		leads, err := st.ListLeads(ctx)
		if err != nil {
			return err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			data, err := fileio.EncodeLeadsPayload(leads, time.Now().UTC().Format(time.RFC3339))
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return eris.Wrapf(err, "export: write %s", path)
			}
		case ".xlsx":
			if err := fileio.WriteWorkbook(path, leads); err != nil {
				return err
			}
		default:
			return eris.Errorf("export: unsupported file type %q (want .json or .xlsx)", filepath.Ext(path))
		}

		zap.L().Info("export complete",
			zap.String("file", path),
			zap.Int("leads", len(leads)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
