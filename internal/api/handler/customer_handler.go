package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"customers-service/internal/api/handler/dto"
	"customers-service/internal/domain/customer"
	"customers-service/internal/export"
	"customers-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewCustomerHandler(s customer.Service, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
		now:     time.Now,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var violations []customer.FieldViolation
	var validationErrs *customer.ValidationErrors
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &validationErrs):
		status, message, violations = http.StatusBadRequest, validationErrs.Error(), validationErrs.Violations
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message:    message,
			Field:      field,
			Violations: violations,
		},
	}
	respondJSON(w, status, resp)
}

func getPeselFromURL(r *http.Request) (string, error) {
	pesel := chi.URLParam(r, "peselNumber")
	if pesel == "" {
		return "", fmt.Errorf("%w: peselNumber not found in URL path", apperrors.ErrInvalidArgument)
	}
	return pesel, nil
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Creates a customer record; the PESEL number must be unused.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer created; Location header points at /customers/{peselNumber}"
// @Failure 400 {object} dto.ErrorResponse "Field validation failure"
// @Failure 409 {object} dto.ErrorResponse "PESEL number already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.AddCustomer(r.Context(), req.ToDomain())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(created)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("peselNumber", resp.PeselNumber))
	w.Header().Set("Location", "/customers/"+created.PeselNumber)
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{peselNumber}
// @Summary Retrieve a customer
// @Description Retrieves a customer by PESEL number, contacts included.
// @Tags Customers
// @Produce json
// @Param peselNumber path string true "PESEL number (11 digits)"
// @Success 200 {object} dto.CustomerResponse "Customer retrieved"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{peselNumber} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	pesel, err := getPeselFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	domainCustomer, err := h.service.GetCustomerByPesel(r.Context(), pesel)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(domainCustomer))
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Returns one fixed-size page of customers ordered by surrogate id.
// @Tags Customers
// @Produce json
// @Param page query int false "Page index, clamped to minimum 0" Example(0)
// @Param sort query string false "Sort direction: ASC (default) or DESC"
// @Success 200 {object} dto.PageResponse "Page of customers"
// @Success 204 "No customers exist"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list customers request")

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	direction := customer.NormalizeSortDirection(r.URL.Query().Get("sort"))

	result, err := h.service.ListCustomers(r.Context(), page, direction)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if result.TotalElements == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPageResponse(result))
}

// UpdateCustomer handles PUT /customers/{peselNumber}
// @Summary Edit a customer
// @Description Updates name and surname. The PESEL number in the body must match the path and cannot change.
// @Tags Customers
// @Accept json
// @Produce json
// @Param peselNumber path string true "PESEL number (11 digits)"
// @Param request body dto.CustomerRequest true "Edit request; peselNumber must equal the path value"
// @Success 200 {object} dto.CustomerResponse "Customer updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failure or path/body PESEL mismatch"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{peselNumber} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	pesel, err := getPeselFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.EditCustomer(r.Context(), pesel, req.ToDomain())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to edit customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully", slog.String("peselNumber", pesel))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeleteCustomer handles DELETE /customers/{peselNumber}
// @Summary Delete a customer
// @Description Removes the customer and its contact methods.
// @Tags Customers
// @Param peselNumber path string true "PESEL number (11 digits)"
// @Success 204 "Customer deleted"
// @Failure 400 {object} dto.ErrorResponse "No customer with this PESEL number"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{peselNumber} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	pesel, err := getPeselFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), pesel); err != nil {
		// Deleting a missing customer reports 400, not 404. Long-standing
		// contract; clients depend on it.
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "Delete requested for missing customer", slog.String("peselNumber", pesel))
			respondJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error: dto.ErrorDetail{Message: fmt.Sprintf("no customer with PESEL number %s", pesel)},
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "Service failed to delete customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted successfully", slog.String("peselNumber", pesel))
	w.WriteHeader(http.StatusNoContent)
}

// AddContactMethods handles POST /customers/{peselNumber}/methods
// @Summary Replace a customer's contact methods
// @Description Attaches a contact bundle, replacing any previous bundle wholesale.
// @Tags Customers
// @Accept json
// @Produce json
// @Param peselNumber path string true "PESEL number (11 digits)"
// @Param request body dto.ContactMethodsRequest true "Contact methods payload"
// @Success 200 {object} dto.CustomerResponse "Customer with new contact methods"
// @Failure 400 {object} dto.ErrorResponse "Field validation failure"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{peselNumber}/methods [post]
func (h *CustomerHandler) AddContactMethods(w http.ResponseWriter, r *http.Request) {
	pesel, err := getPeselFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.ContactMethodsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	contacts := req.ToDomain()
	if err := contacts.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Contact methods validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updated, err := h.service.AddContact(r.Context(), pesel, contacts)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to replace contact methods", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Contact methods replaced successfully", slog.String("peselNumber", pesel))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// ExportCustomers handles GET /customers/export
// @Summary Export customers as CSV
// @Description Streams every customer as CSV with a timestamped attachment filename.
// @Tags Customers
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/export [get]
func (h *CustomerHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received export customers request")

	customers, err := h.service.ListCustomersForExport(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers for export", slog.Any("error", err))
		respondError(w, err)
		return
	}

	filename := export.Filename(h.now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCustomers(w, customers); err != nil {
		// Headers are gone; the truncated body is all we can report.
		h.logger.ErrorContext(r.Context(), "Failed to stream CSV export", slog.Any("error", err))
	}
}
