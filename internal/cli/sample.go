package cli

import (
	"time"

	"github.com/clinicpulse/clinicpulse/internal/models"
)

// sampleAssets is the demo clinic used when no database is configured.
func sampleAssets(now time.Time) []models.Asset {
	return []models.Asset{
		{
			ID: "gmb-main", Name: "Google Business Profile", Type: models.AssetGMB,
			Status: models.StatusActive, Priority: models.PriorityHigh, LastUpdated: now.Add(-2 * time.Hour),
			Metrics: map[string]float64{"views": 2847, "clicks": 342, "calls": 28},
			URL:     "https://g.page/example-clinic",
		},
		{
			ID: "website-main", Name: "Main Website", Type: models.AssetWebsite,
			Status: models.StatusActive, Priority: models.PriorityHigh, LastUpdated: now.AddDate(0, 0, -1),
			Metrics: map[string]float64{"sessions": 1234, "users": 987, "pageviews": 3456},
			URL:     "https://clinic.example",
		},
		{
			ID: "facebook-page", Name: "Facebook Business Page", Type: models.AssetSocialMedia,
			Status: models.StatusWarning, Priority: models.PriorityMedium, LastUpdated: now.AddDate(0, 0, -3),
			Metrics: map[string]float64{"followers": 2145, "engagement": 156},
		},
		{
			ID: "instagram-profile", Name: "Instagram Profile", Type: models.AssetSocialMedia,
			Status: models.StatusCritical, Priority: models.PriorityHigh, LastUpdated: now.AddDate(0, 0, -7),
			Metrics: map[string]float64{"followers": 892, "posts": 45},
		},
		{
			ID: "psychology-today", Name: "Psychology Today Profile", Type: models.AssetDirectory,
			Status: models.StatusActive, Priority: models.PriorityHigh, LastUpdated: now.AddDate(0, 0, -2),
		},
		{
			ID: "google-ads", Name: "Google Ads Campaign", Type: models.AssetAdvertising,
			Status: models.StatusActive, Priority: models.PriorityMedium, LastUpdated: now.Add(-6 * time.Hour),
			Metrics: map[string]float64{"impressions": 15420, "clicks": 234, "cost": 567.89},
		},
	}
}
