package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List registered agents and their coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s (mode %s)\n\n", reg.Source(), cfg.LayoutMode)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AGENT\tX\tY\tVALID\tREASON")
			for _, ep := range reg.Agents() {
				valid := "yes"
				if !ep.Valid {
					valid = "no"
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", ep.AgentID, ep.X, ep.Y, valid, ep.LastValidationError)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	return cmd
}
