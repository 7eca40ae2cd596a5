package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/store"
)

var leadsStage string

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tSTAGE\tVALUE\tOWNER")
		for _, l := range leads {
			if leadsStage != "" && l.Stage != model.Stage(leadsStage) {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
				l.ID, l.Name, l.Phone, l.Stage, l.Value, l.Owner)
		}
		return w.Flush()
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsStage, "stage", "", "only show leads in this stage")
	rootCmd.AddCommand(leadsCmd)
}
