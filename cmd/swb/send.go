package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/models"
)

// drainTimeout bounds how long a one-shot send waits for the worker to
// finish delivering.
const drainTimeout = 2 * time.Minute

func newSendCmd() *cobra.Command {
	var (
		configPath   string
		agent        string
		message      string
		from         string
		msgType      string
		priority     string
		highPriority bool
		mode         string
		bulk         bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to an agent",
		Long:  "Sends a message to one agent, or to every registered agent with --bulk. Delivery goes through the GUI injection channel or the file-drop channel depending on message length, unless --mode forces one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !bulk && agent == "" {
				return fmt.Errorf("swb: --agent is required unless --bulk is set")
			}
			if bulk && agent != "" {
				return fmt.Errorf("swb: --agent and --bulk are mutually exclusive")
			}

			typ, err := models.ParseMessageType(strings.ToUpper(msgType))
			if err != nil {
				return err
			}
			prio, err := models.ParsePriority(strings.ToUpper(priority))
			if err != nil {
				return err
			}
			if highPriority && prio < models.PriorityHigh {
				prio = models.PriorityHigh
			}

			var metadata map[string]string
			switch mode {
			case "":
			case string(channel.KindGUI), string(channel.KindFile):
				metadata = map[string]string{models.MetaChannel: mode}
			default:
				return fmt.Errorf("swb: --mode must be gui or file, got %q", mode)
			}

			cfg, reg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			// Collect per-message failures from the worker goroutine.
			var (
				mu       sync.Mutex
				failures = map[string]error{}
			)
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
					mu.Lock()
					failures[msg.ID] = ferr
					mu.Unlock()
				},
			})
			if err != nil {
				return err
			}

			var (
				ids    []string
				recips []string
			)
			if bulk {
				ids, err = coord.Broadcast(from, message, typ, prio, metadata)
				recips = reg.AgentIDs()
			} else {
				var id string
				id, err = coord.Enqueue(from, agent, message, typ, prio, metadata)
				ids = []string{id}
				recips = []string{agent}
			}
			if err != nil {
				return err
			}

			coord.Start()
			defer coord.Stop()
			if !coord.WaitIdle(drainTimeout) {
				return fmt.Errorf("swb: timed out waiting for delivery")
			}

			out := cmd.OutOrStdout()
			mu.Lock()
			defer mu.Unlock()
			failed := 0
			for i, id := range ids {
				if ferr, ok := failures[id]; ok {
					failed++
					fmt.Fprintf(out, "FAILED  %s: %v\n", recips[i], ferr)
					continue
				}
				fmt.Fprintf(out, "Sent %s to %s\n", id, recips[i])
			}
			if bulk {
				fmt.Fprintf(out, "Delivered %d/%d\n", len(ids)-failed, len(ids))
			}
			if failed > 0 {
				return fmt.Errorf("swb: %d of %d deliveries failed", failed, len(ids))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().StringVar(&agent, "agent", "", "recipient agent ID")
	cmd.Flags().StringVar(&message, "message", "", "message content (required)")
	cmd.Flags().StringVar(&from, "from", "operator", "sender ID")
	cmd.Flags().StringVar(&msgType, "type", "TEXT", "message type (TEXT, COMMAND, STATUS, COORDINATION, ONBOARDING)")
	cmd.Flags().StringVar(&priority, "priority", "NORMAL", "message priority (LOW, NORMAL, HIGH, URGENT)")
	cmd.Flags().BoolVar(&highPriority, "high-priority", false, "shorthand for --priority HIGH")
	cmd.Flags().StringVar(&mode, "mode", "", "force delivery channel (gui or file)")
	cmd.Flags().BoolVar(&bulk, "bulk", false, "broadcast to every registered agent")
	cmd.MarkFlagRequired("message")
	return cmd
}
