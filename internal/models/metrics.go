package models

import "time"

// SystemMetrics is the admin view of the service counters since start-up.
type SystemMetrics struct {
	Requests    RequestMetrics    `json:"requests"`
	Cache       CacheMetrics      `json:"cache"`
	Store       StoreMetrics      `json:"store"`
	Submissions SubmissionMetrics `json:"submissions"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

type RequestMetrics struct {
	Total             uint64  `json:"total"`
	AverageDurationMs float64 `json:"averageDurationMs"`
}

type CacheMetrics struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRatio  float64 `json:"hitRatio"`
	Refreshes uint64  `json:"refreshes"`
}

type StoreMetrics struct {
	Operations        uint64  `json:"operations"`
	Failures          uint64  `json:"failures"`
	AverageDurationMs float64 `json:"averageDurationMs"`
}

// SubmissionMetrics counts submission attempts by outcome.
type SubmissionMetrics struct {
	Accepted   uint64 `json:"accepted"`
	Invalid    uint64 `json:"invalid"`
	Duplicate  uint64 `json:"duplicate"`
	StoreError uint64 `json:"storeError"`
}
