package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		agent      string
		failed     bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent delivery records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			var recs []models.DeliveryRecord
			switch {
			case agent != "":
				recs, err = store.ForAgent(agent, limit)
			case failed:
				recs, err = store.Failures(limit)
			default:
				recs, err = store.Recent(limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No delivery records.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tFROM\tTO\tCHANNEL\tPRIORITY\tSTATUS\tERROR")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.Local().Format(time.DateTime),
					r.Sender, r.Recipient, r.Channel, r.Priority, r.Status, r.Error)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().StringVar(&agent, "agent", "", "show records for this agent only")
	cmd.Flags().BoolVar(&failed, "failed", false, "show failed deliveries only")
	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "maximum records to show")
	return cmd
}
