package models

import (
	"strings"
	"time"
)

// AssetType classifies a digital asset by channel
type AssetType string

const (
	AssetGMB            AssetType = "gmb"
	AssetWebsite        AssetType = "website"
	AssetSocialMedia    AssetType = "social_media"
	AssetDirectory      AssetType = "directory"
	AssetReviewPlatform AssetType = "review_platform"
	AssetAdvertising    AssetType = "advertising"
)

// AssetStatus is the health of an asset as reported on the dashboard
type AssetStatus string

const (
	StatusActive   AssetStatus = "active"
	StatusWarning  AssetStatus = "warning"
	StatusCritical AssetStatus = "critical"
	StatusInactive AssetStatus = "inactive"
)

// Priority is shared by assets and tasks
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Asset is one row of the digital_assets table
type Asset struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        AssetType          `json:"type"`
	Status      AssetStatus        `json:"status"`
	Priority    Priority           `json:"priority"`
	LastUpdated time.Time          `json:"last_updated"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	URL         string             `json:"url,omitempty"`
}

// AssetRecord adapts an Asset to the filterable record shape.
type AssetRecord struct {
	Asset
}

func (r AssetRecord) Label() string { return r.Name }

// Description returns a readable summary; assets carry no free-text notes.
func (r AssetRecord) Description() string {
	if r.Type == "" {
		return ""
	}
	return strings.ReplaceAll(string(r.Type), "_", " ")
}

func (r AssetRecord) Category() string { return string(r.Type) }

func (r AssetRecord) Status() (string, bool) {
	return string(r.Asset.Status), r.Asset.Status != ""
}

func (r AssetRecord) Priority() (string, bool) {
	return string(r.Asset.Priority), r.Asset.Priority != ""
}

// Completed is not defined for assets.
func (r AssetRecord) Completed() (bool, bool) { return false, false }

func (r AssetRecord) Date() (time.Time, bool) {
	return r.LastUpdated, !r.LastUpdated.IsZero()
}
