package models

import "time"

// StatsSnapshot is a point-in-time copy of the usage counters.
type StatsSnapshot struct {
	TotalQuestions int64     `json:"totalQuestions"`
	CacheHits      int64     `json:"cacheHits"`
	APICalls       int64     `json:"apiCalls"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// ServerStats extends StatsSnapshot with values computed from the store for
// the stats endpoint.
type ServerStats struct {
	StatsSnapshot
	DatabaseSize int     `json:"databaseSize"`
	AverageUsage float64 `json:"averageUsage"`
}
