package models

import "time"

// Competitor is a nearby practice tracked on the competitor panel
type Competitor struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ReviewCount   int       `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
	DistanceKM    float64   `json:"distance_km"`
	WebsiteURL    string    `json:"website_url,omitempty"`
	LastUpdated   time.Time `json:"last_updated"`
}

// KPIPoint is a single sample of a KPI time series (views, clicks, calls, sessions...)
type KPIPoint struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}
