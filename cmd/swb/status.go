package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// watchInterval is the redraw period for status --watch.
const watchInterval = 5 * time.Second

// agentStatus mirrors the dashboard's /api/agents entry.
type agentStatus struct {
	AgentID     string `json:"agent_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason"`
	State       string `json:"state"`
	LastSeen    string `json:"last_seen"`
	CurrentTask string `json:"current_task"`
}

type agentsResponse struct {
	Source string        `json:"source"`
	Agents []agentStatus `json:"agents"`
}

func newStatusCmd() *cobra.Command {
	var (
		serverURL string
		agent     string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show live agent status from a running server",
		Long:  "Queries the dashboard API of a running `swb serve` process and prints each agent's liveness state, coordinates, and current task.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watch {
				return printStatus(cmd, serverURL, agent)
			}

			// Only clear the screen when attached to a real terminal;
			// piped output gets appended frames instead.
			isTerm := term.IsTerminal(int(os.Stdout.Fd()))
			for {
				if isTerm {
					fmt.Fprint(cmd.OutOrStdout(), "\033[2J\033[H")
				}
				if err := printStatus(cmd, serverURL, agent); err != nil {
					return err
				}
				time.Sleep(watchInterval)
			}
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "base URL of the running swb serve dashboard")
	cmd.Flags().StringVar(&agent, "agent", "", "show only this agent")
	cmd.Flags().BoolVar(&watch, "watch", false, "redraw every 5 seconds")
	return cmd
}

func printStatus(cmd *cobra.Command, serverURL, agent string) error {
	resp, err := http.Get(serverURL + "/api/agents")
	if err != nil {
		return fmt.Errorf("swb: query %s: %w (is swb serve running?)", serverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("swb: query %s: unexpected status %s", serverURL, resp.Status)
	}

	var body agentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("swb: decode agent status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s\n\n", body.Source)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tSTATE\tX\tY\tLAST SEEN\tTASK")
	found := false
	for _, a := range body.Agents {
		if agent != "" && a.AgentID != agent {
			continue
		}
		found = true
		lastSeen := a.LastSeen
		if lastSeen == "" {
			lastSeen = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", a.AgentID, a.State, a.X, a.Y, lastSeen, a.CurrentTask)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if agent != "" && !found {
		return fmt.Errorf("swb: agent %s not registered", agent)
	}
	return nil
}
