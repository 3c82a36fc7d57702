package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/core/ports"
)

// TimesheetHandler handles hour-log operations and the sweep trigger.
type TimesheetHandler struct {
	service ports.TimesheetService
}

func NewTimesheetHandler(service ports.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: service}
}

// Start handles POST /staff/hourlogs/start.
//
// @Summary      Start a time entry
// @Tags         timesheet
// @Accept       json
// @Produce      json
// @Param        body  body      startLogRequest  true  "Optional job and notes"
// @Success      201   {object}  domain.HourLog
// @Failure      400   {object}  errorResponse
// @Router       /staff/hourlogs/start [post]
func (h *TimesheetHandler) Start(c echo.Context) error {
	var req startLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	log, err := h.service.StartLog(c.Request().Context(), ports.StartLogInput{
		UserID: principal.UserID,
		JobID:  req.JobID,
		Notes:  req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, log)
}

// Stop handles POST /staff/hourlogs/:id/stop. Stopping an already-closed log
// returns the log unchanged.
//
// @Summary      Stop a time entry
// @Tags         timesheet
// @Produce      json
// @Param        id  path      string  true  "Hour log id"
// @Success      200 {object}  domain.HourLog
// @Failure      404 {object}  errorResponse
// @Router       /staff/hourlogs/{id}/stop [post]
func (h *TimesheetHandler) Stop(c echo.Context) error {
	log, err := h.service.StopLog(c.Request().Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

// List handles GET /staff/hourlogs — the principal's own entries.
//
// @Summary      List own time entries
// @Tags         timesheet
// @Produce      json
// @Success      200 {array}  domain.HourLog
// @Router       /staff/hourlogs [get]
func (h *TimesheetHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	logs, err := h.service.ListLogs(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

// Sweep handles POST /admin/timesheet/sweep — the entry point an external
// scheduler hits on a fixed cadence.
//
// @Summary      Run the auto-stop sweep
// @Tags         timesheet
// @Accept       json
// @Produce      json
// @Param        body  body      sweepRequest  false  "Optional cutoff override"
// @Success      200   {object}  ports.SweepReport
// @Router       /admin/timesheet/sweep [post]
func (h *TimesheetHandler) Sweep(c echo.Context) error {
	var req sweepRequest
	// Body is optional; ignore bind errors on an empty payload.
	_ = c.Bind(&req)

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	report, err := h.service.Sweep(c.Request().Context(), now)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
