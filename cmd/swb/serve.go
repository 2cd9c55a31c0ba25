package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/notify"
	"github.com/zulandar/switchboard/internal/status"
)

// notifyTimeout bounds each escalation attempt so a slow webhook cannot
// stall the failure path.
const notifyTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dispatch engine and dashboard",
		Long:  "Runs the dispatch worker, the agent staleness sweeper, and the HTTP dashboard until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dashboard.Port = port
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			notifier, err := buildNotifier(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			escalate := func(ev notify.Event) {
				if notifier == nil {
					return
				}
				nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()
				if err := notifier.Notify(nctx, ev); err != nil {
					log.Printf("serve: notify: %v", err)
				}
			}

			coord, err := dispatch.NewCoordinator(dispatch.Opts{
				Registry:      reg,
				Store:         store,
				InboxRoot:     cfg.InboxRoot,
				QueueCapacity: cfg.Dispatch.QueueCapacity,
				Threshold:     cfg.Dispatch.Threshold,
				PollTimeout:   cfg.PollTimeout(),
				GUI: channel.GUIOpts{
					SettleDelay: cfg.SettleDelay(),
					KeyDelay:    cfg.KeyDelay(),
				},
				OnFailure: func(msg *models.Message, ferr error) {
					// Routine failures land in history; only urgent
					// traffic pages a human.
					if msg.Priority != models.PriorityUrgent {
						return
					}
					escalate(notify.Event{
						MessageID: msg.ID,
						AgentID:   msg.Recipient,
						Channel:   string(channel.Choose(msg, cfg.Dispatch.Threshold)),
						Reason:    ferr.Error(),
						Severity:  notify.SeverityError,
						Time:      time.Now(),
					})
				},
			})
			if err != nil {
				return err
			}

			sweeper, err := status.NewSweeper(coord.Tracker(), status.SweepConfig{
				Schedule: cfg.Stall.Schedule,
				MaxAge:   cfg.StallMaxAge(),
			}, func(agentID string) {
				escalate(notify.Event{
					AgentID:  agentID,
					Reason:   "agent went quiet",
					Severity: notify.SeverityWarning,
					Time:     time.Now(),
				})
			})
			if err != nil {
				return err
			}

			coord.Start()
			defer coord.Stop()
			sweeper.Start(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "Switchboard serving %d agents, dashboard on :%d\n",
				len(reg.AgentIDs()), cfg.Dashboard.Port)

			return dashboard.Start(ctx, dashboard.StartOpts{
				Registry:    reg,
				Coordinator: coord,
				Store:       store,
				Port:        cfg.Dashboard.Port,
				Out:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().IntVar(&port, "port", 0, "dashboard port (overrides config)")
	return cmd
}
