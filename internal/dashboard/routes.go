package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/switchboard/internal/models"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/api/agents", handleAgents(opts))
	router.GET("/api/stats", handleStats(opts))
	router.GET("/api/history", handleHistory(opts))
	router.GET("/api/events", handleSSE(opts))
}

// agentView joins a registry endpoint with its live tracker record.
type agentView struct {
	AgentID     string `json:"agent_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
	State       string `json:"state"`
	LastSeen    string `json:"last_seen,omitempty"`
	CurrentTask string `json:"current_task,omitempty"`
}

func handleAgents(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		live := opts.Tracker.Snapshot()
		eps := opts.Registry.Agents()
		views := make([]agentView, 0, len(eps))
		for _, ep := range eps {
			v := agentView{
				AgentID: ep.AgentID,
				X:       ep.X,
				Y:       ep.Y,
				Valid:   ep.Valid,
				Reason:  ep.LastValidationError,
				State:   string(models.AgentUnknown),
			}
			if rec, ok := live[ep.AgentID]; ok {
				v.State = string(rec.State)
				v.LastSeen = rec.LastSeen.UTC().Format(time.RFC3339)
				v.CurrentTask = rec.CurrentTask
			}
			views = append(views, v)
		}
		c.JSON(http.StatusOK, gin.H{
			"source": string(opts.Registry.Source()),
			"agents": views,
		})
	}
}

func handleStats(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, opts.Coordinator.Stats())
	}
}

func handleHistory(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		var (
			recs []models.DeliveryRecord
			err  error
		)
		switch {
		case c.Query("agent") != "":
			recs, err = opts.Store.ForAgent(c.Query("agent"), limit)
		case c.Query("failed") == "true":
			recs, err = opts.Store.Failures(limit)
		default:
			recs, err = opts.Store.Recent(limit)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if recs == nil {
			recs = []models.DeliveryRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	}
}
