package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sovcrm/crm-cli/internal/config"
	"github.com/sovcrm/crm-cli/internal/fileio"
	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/reconcile"
	"github.com/sovcrm/crm-cli/internal/store"
)

var (
	importMerge bool
	importOwner string
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import leads from JSON, CSV, or XLSX files",
	Long: "Normalizes records from each file and reconciles them against the stored\n" +
		"collection. With --merge (default) existing leads are updated additively;\n" +
		"with --merge=false the collection is replaced by the imported leads.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		merge, forcedOwner := resolveImportOptions(cmd.Flags(), cfg.Import)

		incoming, err := parseImportFiles(ctx, args)
		if err != nil {
			return err
		}
		if owner := strings.ToLower(strings.TrimSpace(forcedOwner)); owner != "" {
			for i := range incoming {
				incoming[i].Owner = reconcile.SanitizeString(owner, 60)
			}
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		existing, err := st.ListLeads(ctx)
		if err != nil {
			return err
		}

		var next []model.Lead
		added, updated := 0, 0
		if merge {
			res := reconcile.Reconcile(existing, incoming)
			next = res.Merged
			added, updated = res.Added, res.Updated
		} else {
			next = make([]model.Lead, 0, len(incoming))
			for _, l := range incoming {
				next = append(next, l.WithoutImportMeta())
			}
			added = len(next)
		}

		if err := st.ReplaceLeads(ctx, next); err != nil {
			return err
		}
		if err := st.AppendAudit(ctx, model.AuditEntry{
			Action: "import",
			Detail: importAuditDetail(args, merge, added, updated),
		}); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("files", len(args)),
			zap.Bool("merge", merge),
			zap.Int("added", added),
			zap.Int("updated", updated),
			zap.Int("total", len(next)),
		)
		return nil
	},
}

// resolveImportOptions picks the effective merge mode and forced owner:
// an explicitly set flag wins, otherwise the crm.yaml import section
// supplies the value.
func resolveImportOptions(flags *pflag.FlagSet, ic config.ImportConfig) (merge bool, owner string) {
	merge = ic.Merge
	if flags.Changed("merge") {
		merge, _ = flags.GetBool("merge")
	}
	owner = ic.Owner
	if flags.Changed("owner") {
		owner, _ = flags.GetString("owner")
	}
	return merge, owner
}

// parseImportFiles parses all files concurrently, then concatenates the
// normalized batches in argument order so reconciliation stays
// deterministic.
func parseImportFiles(ctx context.Context, paths []string) ([]model.Lead, error) {
	batches := make([][]model.Lead, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			leads, err := parseImportFile(gctx, path)
			if err != nil {
				return err
			}
			mu.Lock()
			batches[i] = leads
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var incoming []model.Lead
	for _, batch := range batches {
		incoming = append(incoming, batch...)
	}
	return incoming, nil
}

func parseImportFile(ctx context.Context, path string) ([]model.Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "import: read %s", path)
		}
		records, err := fileio.DecodeLeadsPayload(data)
		if err != nil {
			return nil, eris.Wrapf(err, "import: %s", path)
		}
		return reconcile.NormalizeRecords(records), nil

	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "import: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err := fileio.ReadCSVRecords(ctx, f)
		if err != nil {
			return nil, eris.Wrapf(err, "import: %s", path)
		}
		return reconcile.NormalizeRecords(reconcile.FromTabular(rows, nil)), nil

	case ".xlsx":
		wb, err := fileio.ReadWorkbook(path)
		if err != nil {
			return nil, eris.Wrapf(err, "import: %s", path)
		}
		return reconcile.NormalizeRecords(reconcile.FromTabular(wb.LeadRows, wb.TaskRows)), nil
	}

	return nil, eris.Errorf("import: unsupported file type %q (want .json, .csv, or .xlsx)", filepath.Ext(path))
}

func importAuditDetail(paths []string, merge bool, added, updated int) string {
	mode := "replace"
	if merge {
		mode = "merge"
	}
	return "mode=" + mode +
		" files=" + strings.Join(paths, ",") +
		" added=" + strconv.Itoa(added) +
		" updated=" + strconv.Itoa(updated)
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", true, "merge into existing leads instead of replacing them")
	importCmd.Flags().StringVar(&importOwner, "owner", "", "assign all imported leads to this owner")
	rootCmd.AddCommand(importCmd)
}
