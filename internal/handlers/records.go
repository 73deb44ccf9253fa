package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/database"
	"github.com/clinicpulse/clinicpulse/internal/filter"
	"github.com/clinicpulse/clinicpulse/internal/httpx"
	"github.com/clinicpulse/clinicpulse/internal/logging"
	"github.com/clinicpulse/clinicpulse/internal/models"
	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

// HandleAssets lists digital assets matching the filter query parameters.
func HandleAssets(c fiber.Ctx) error {
	assets, err := database.ListAssets(c.Context())
	if err != nil {
		logging.L().Error("failed to list assets", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to query assets")
	}

	criteria := filter.ParseCriteria(httpx.QueryLookup(c))
	matched := filter.Apply(models.AssetRecords(assets), criteria)

	out := make([]models.Asset, len(matched))
	for i, r := range matched {
		out[i] = r.Asset
	}

	params := ParsePaginationParams(c, "assets")
	sortAssets(out, params)
	return c.JSON(NewPaginatedResponse(out, params, criteria.ActiveCount()))
}

// HandleTasks lists tasks matching the filter query parameters.
func HandleTasks(c fiber.Ctx) error {
	tasks, err := database.ListTasks(c.Context())
	if err != nil {
		logging.L().Error("failed to list tasks", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to query tasks")
	}

	criteria := filter.ParseCriteria(httpx.QueryLookup(c))
	matched := filter.Apply(models.TaskRecords(tasks), criteria)

	out := make([]models.Task, len(matched))
	for i, r := range matched {
		out[i] = r.Task
	}

	params := ParsePaginationParams(c, "tasks")
	sortTasks(out, params)
	return c.JSON(NewPaginatedResponse(out, params, criteria.ActiveCount()))
}

func (r CreateTaskRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	switch models.TaskType(r.Type) {
	case models.TaskContentCreation, models.TaskOptimization, models.TaskMonitoring,
		models.TaskEngagement, models.TaskAnalysis:
	default:
		return errors.New("type must be one of content_creation, optimization, monitoring, engagement, analysis")
	}
	switch models.Priority(r.Priority) {
	case "", models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return errors.New("priority must be one of high, medium, low")
	}
	return nil
}

// HandleCreateTask inserts a task from a JSON body.
func HandleCreateTask(c fiber.Ctx) error {
	var req CreateTaskRequest
	if err := httpx.ReadJSON(c, &req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var due time.Time
	if req.DueDate != "" {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			return httpx.Error(c, fiber.StatusBadRequest, "due_date must be RFC3339 or YYYY-MM-DD")
		}
		due = parsed
	}

	task, err := database.CreateTask(c.Context(), models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        models.TaskType(req.Type),
		Priority:    models.Priority(req.Priority),
		DueDate:     due,
		AIGenerated: req.AIGenerated,
	})
	if err != nil {
		logging.L().Error("failed to create task", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to create task")
	}

	return httpx.JSON(c, fiber.StatusCreated, task)
}

func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// HandleCompleteTask marks a task done and announces it on the update bus.
func (a *API) HandleCompleteTask(c fiber.Ctx) error {
	id := c.Params("id")
	task, changed, err := database.CompleteTask(c.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return httpx.Error(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		logging.L().Error("failed to complete task", "task_id", id, "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to complete task")
	}

	// With a relay running, the tasks table trigger already issued the NOTIFY.
	// Completing an already completed task announces nothing.
	if changed && !a.RelayNotifications {
		a.Bus.TriggerUpdate(realtime.NewUpdateEvent(realtime.KindTask, realtime.ActionUpdate, map[string]any{
			"id":        task.ID,
			"completed": true,
			"priority":  string(task.Priority),
			"title":     task.Title,
		}, time.Now()))
	}

	return c.JSON(task)
}

// HandleCompetitors lists tracked competitors.
func HandleCompetitors(c fiber.Ctx) error {
	competitors, err := database.ListCompetitors(c.Context())
	if err != nil {
		logging.L().Error("failed to list competitors", "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to query competitors")
	}
	return c.JSON(competitors)
}

// HandleKPISeries returns one metric's samples over the last `days` days (default 30, max 400).
func HandleKPISeries(c fiber.Ctx) error {
	metric := c.Params("metric")
	days := min(max(httpx.QueryInt(c, "days", 30), 1), 400)
	since := time.Now().AddDate(0, 0, -days)

	points, err := database.KPISeries(c.Context(), metric, since)
	if err != nil {
		logging.L().Error("failed to query kpi series", "metric", metric, "error", err)
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to query KPI series")
	}
	return c.JSON(fiber.Map{
		"metric": metric,
		"days":   days,
		"points": points,
	})
}
