package models

import "time"

// RefreshControl is the singleton row holding the refresh watermark.
type RefreshControl struct {
	LastRefreshedAt *time.Time `db:"last_refreshed_at"`
}
