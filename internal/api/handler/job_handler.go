package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

// JobHandler handles HTTP requests for job lifecycle operations.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

type jobDetailResponse struct {
	Job      *domain.Job              `json:"job"`
	Progress []*domain.ProgressUpdate `json:"progress"`
}

type listJobsResponse struct {
	Items      []*domain.Job `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// Create handles POST /admin/jobs.
//
// @Summary      Open a new production job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        body  body      createJobRequest  true  "Job details"
// @Success      201   {object}  domain.Job
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	var req createJobRequest
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

	products := make([]ports.ProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, ports.ProductInput{
			ProductID:         p.ProductID,
			Description:       p.Description,
			Quantity:          p.Quantity,
			CompletedQuantity: p.CompletedQuantity,
		})
	}

	job, err := h.service.CreateJob(c.Request().Context(), ports.CreateJobInput{
		Title:        req.Title,
		Priority:     req.Priority,
		CustomerID:   req.CustomerID,
		AssignedToID: req.AssignedToID,
		CreatedByID:  principal.UserID,
		Products:     products,
		DueDate:      req.DueDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, job)
}

// Get handles GET on a single job for all three scopes; the portal scope is
// restricted to the principal's own customer record by the service layer.
//
// @Summary      Get a job with its progress trail
// @Tags         jobs
// @Produce      json
// @Param        id  path      string  true  "Job id"
// @Success      200 {object}  jobDetailResponse
// @Failure      404 {object}  errorResponse
// @Router       /{scope}/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetJob(c.Request().Context(), ports.GetJobInput{
		JobID:      c.Param("id"),
		Role:       principal.Role,
		CustomerID: principal.CustomerID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jobDetailResponse{Job: detail.Job, Progress: detail.Progress})
}

// List handles job listing for all three scopes.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Param        status    query     string  false  "Filter by status"
// @Param        priority  query     string  false  "Filter by priority"
// @Param        search    query     string  false  "Partial title match"
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  listJobsResponse
// @Router       /{scope}/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	input := ports.ListJobsInput{
		Role:       principal.Role,
		CustomerID: principal.CustomerID,
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		Search:     c.QueryParam("search"),
		Page:       page,
		Limit:      limit,
	}
	if principal.Role == domain.RoleEmployee {
		input.AssignedToID = principal.UserID
	}
	if from := c.QueryParam("due_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			input.DueFrom = t
		}
	}
	if to := c.QueryParam("due_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			input.DueTo = t
		}
	}

	result, err := h.service.ListJobs(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listJobsResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// SetStatus handles PATCH /{scope}/jobs/:id/status — the direct entry point
// of the status machine.
//
// @Summary      Set a job's status
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Job id"
// @Param        body  body      setStatusRequest  true  "Target status"
// @Success      200   {object}  transitionResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /{scope}/jobs/{id}/status [patch]
func (h *JobHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
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

	jobID := c.Param("id")
	result, err := h.service.SetStatus(c.Request().Context(), ports.SetStatusInput{
		JobID:        jobID,
		NewStatus:    req.Status,
		ActingUserID: principal.UserID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transitionResponse{
		JobID:    jobID,
		Previous: string(result.Previous),
		Current:  string(result.Current),
		Audited:  result.Audited,
	})
}
