package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/core/ports"
)

// ProgressDispatcher is the interface the handler uses to enqueue reports.
type ProgressDispatcher interface {
	Enqueue(report ports.ProgressReportInput)
	EnqueueBatch(reports []ports.ProgressReportInput)
}

// ProgressHandler handles shop-floor completion report ingestion.
type ProgressHandler struct {
	service    ports.JobService
	dispatcher ProgressDispatcher
}

func NewProgressHandler(service ports.JobService, dispatcher ProgressDispatcher) *ProgressHandler {
	return &ProgressHandler{service: service, dispatcher: dispatcher}
}

// Record handles POST /staff/jobs/:id/progress — synchronous completion
// report; the derived transition (if any) is returned in the response.
//
// @Summary      Record line-item completion for one job
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Job id"
// @Param        body  body      progressReportRequest  true  "Completion quantities"
// @Success      200   {object}  transitionResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /staff/jobs/{id}/progress [post]
func (h *ProgressHandler) Record(c echo.Context) error {
	var req progressReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.JobID = c.Param("id")
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	result, err := h.service.RecordProgress(c.Request().Context(), toReportInput(req, principal.UserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transitionResponse{
		JobID:    req.JobID,
		Previous: string(result.Previous),
		Current:  string(result.Current),
		Audited:  result.Audited,
	})
}

// Receive handles POST /staff/progress — enqueues a single report, returns 202.
//
// @Summary      Ingest a completion report asynchronously
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        body  body      progressReportRequest  true  "Completion report"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /staff/progress [post]
func (h *ProgressHandler) Receive(c echo.Context) error {
	var req progressReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	h.dispatcher.Enqueue(toReportInput(req, principal.UserID))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "report accepted"})
}

// ReceiveBatch handles POST /staff/progress/batch — enqueues a batch of
// reports, returns 202. Per-job ordering inside the batch is preserved.
//
// @Summary      Ingest a batch of completion reports
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        body  body      []progressReportRequest  true  "Array of completion reports"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /staff/progress/batch [post]
func (h *ProgressHandler) ReceiveBatch(c echo.Context) error {
	var reqs []progressReportRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	inputs := make([]ports.ProgressReportInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("report[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toReportInput(req, principal.UserID))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "reports accepted",
		Count:   len(inputs),
	})
}

// toReportInput maps the HTTP request to the service DTO.
func toReportInput(r progressReportRequest, userID string) ports.ProgressReportInput {
	items := make([]ports.ProgressItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ports.ProgressItemInput{
			ProductID:         item.ProductID,
			CompletedQuantity: item.CompletedQuantity,
		})
	}
	return ports.ProgressReportInput{
		JobID:        r.JobID,
		ActingUserID: userID,
		Items:        items,
	}
}
