package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// handleSSE streams delivery outcomes as server-sent events by polling the
// history store for records newer than the connection's watermark.
func handleSSE(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		// Without a store there is nothing to stream.
		if opts.Store == nil {
			return
		}

		// Only alert on records newer than the connection.
		lastSeenID, err := opts.Store.LatestID()
		if err != nil {
			return
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(2 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				recs, err := opts.Store.Since(lastSeenID)
				if err != nil || len(recs) == 0 {
					continue
				}
				for _, rec := range recs {
					writeSSE(c.Writer, "delivery", rec)
					lastSeenID = rec.ID
				}
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes one event in SSE wire format.
func writeSSE(w io.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
