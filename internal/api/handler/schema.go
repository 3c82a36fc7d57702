package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// acceptedResponse acknowledges asynchronously ingested payloads.
type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8"`
	Role       string `json:"role"        validate:"required,oneof=admin employee customer"`
	CustomerID string `json:"customer_id"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Jobs ---

type jobProductRequest struct {
	ProductID         string `json:"product_id"         validate:"required"`
	Description       string `json:"description"`
	Quantity          int    `json:"quantity"           validate:"required,min=1"`
	CompletedQuantity int    `json:"completed_quantity" validate:"gte=0"`
}

type createJobRequest struct {
	Title        string              `json:"title"    validate:"required"`
	Priority     string              `json:"priority" validate:"omitempty,oneof=low normal high rush"`
	CustomerID   string              `json:"customer_id" validate:"required"`
	AssignedToID string              `json:"assigned_to_id"`
	Products     []jobProductRequest `json:"products" validate:"dive"`
	DueDate      *time.Time          `json:"due_date"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

type transitionResponse struct {
	JobID    string `json:"job_id"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Audited  bool   `json:"audited"`
}

// --- Progress reports ---

type progressItemRequest struct {
	ProductID         string `json:"product_id"         validate:"required"`
	CompletedQuantity int    `json:"completed_quantity" validate:"gte=0"`
}

type progressReportRequest struct {
	JobID string                `json:"job_id" validate:"required"`
	Items []progressItemRequest `json:"items"  validate:"required,min=1,dive"`
}

// --- Timesheet ---

type startLogRequest struct {
	JobID string `json:"job_id"`
	Notes string `json:"notes"`
}

type sweepRequest struct {
	// Now optionally overrides the sweep cutoff; defaults to the server clock.
	Now *time.Time `json:"now"`
}
