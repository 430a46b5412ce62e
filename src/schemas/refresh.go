package schemas

import "time"

type RefreshResult struct {
	RunID       string    `json:"run_id"`
	Updated     int       `json:"updated"`
	Snapshots   int       `json:"snapshots"`
	Skipped     bool      `json:"skipped"`
	WindowStart time.Time `json:"window_start"`
	// LastRefreshedAt is the watermark observed when the attempt was skipped.
	LastRefreshedAt *time.Time `json:"last_refreshed_at,omitempty"`
}
