package types

import "time"

type FeedStats struct {
	LastUpdate     time.Time `json:"last_update"`
	TotalSnapshots int64     `json:"total_snapshots"`
	ActiveFlights  int       `json:"active_flights"`
	SkippedRecords int       `json:"skipped_records"`
	Host           string    `json:"host"`
	Zone           string    `json:"zone"`
	FeedVersion    string    `json:"feed_version"`
	FullCount      int64     `json:"full_count"`
	StartTime      time.Time `json:"start_time"`
}
