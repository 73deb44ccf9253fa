package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/database"
	"github.com/clinicpulse/clinicpulse/internal/ecosystem"
	"github.com/clinicpulse/clinicpulse/internal/httpx"
	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// HandleEcosystem lays out the clinic's assets around the hub.
// ?collapsed=category-0,category-3 hides leaves; ?toggle=category-1 flips one
// category against that set before layout.
func (a *API) HandleEcosystem(c fiber.Ctx) error {
	assets, err := database.ListAssets(c.Context())
	if err != nil {
		logging.L().Error("failed to list assets for ecosystem", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to query assets")
	}

	collapsed := ecosystem.ParseCollapsed(c.Query("collapsed"))
	if toggle := c.Query("toggle"); toggle != "" {
		collapsed = collapsed.Toggle(toggle)
	}

	in := ecosystem.NewInput(a.ClinicName, ecosystem.DefaultCategories(assets), collapsed)
	graph, err := ecosystem.Compute(in)
	if errors.Is(err, ecosystem.ErrInvalidLayout) {
		return httpx.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		logging.L().Error("failed to compute ecosystem layout", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to compute layout")
	}

	return c.JSON(EcosystemResponse{
		Graph:     graph,
		Collapsed: collapsed.IDs(),
		Width:     in.Canvas.Width,
		Height:    in.Canvas.Height,
	})
}
