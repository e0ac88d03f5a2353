// Package logging writes one JSON line per order lifecycle step so the
// orchestration (and any orphaned line items it leaves) can be traced.
package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Service    string   `json:"service"`
	OrderID    string   `json:"order_id,omitempty"`
	Step       string   `json:"step,omitempty"`
	Status     string   `json:"status,omitempty"`
	Items      int      `json:"items,omitempty"`
	Orphans    []string `json:"orphans,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Logger is the destination for lifecycle lines; defaults to the std logger.
var Logger = log.Default()

func Log(fields Fields) {
	payload := map[string]any{
		"service":   fields.Service,
		"step":      fields.Step,
		"status":    fields.Status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if fields.OrderID != "" {
		payload["order_id"] = fields.OrderID
	}
	if fields.Items > 0 {
		payload["items"] = fields.Items
	}
	if len(fields.Orphans) > 0 {
		payload["orphans"] = fields.Orphans
	}
	if fields.DurationMS > 0 {
		payload["duration_ms"] = fields.DurationMS
	}
	if fields.Message != "" {
		payload["message"] = fields.Message
	}
	data, err := json.Marshal(payload)
	if err != nil {
		Logger.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	Logger.Print(string(data))
}

// Since returns the elapsed milliseconds from start, for DurationMS.
func Since(start time.Time) int64 { return time.Since(start).Milliseconds() }
