package patient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/patientdesk/patientdesk/internal/platform/auth"
)

// Envelope is the fixed response shape for every patient endpoint, success
// or failure. Patients is always a non-nil array.
type Envelope struct {
	Message  string     `json:"message"`
	Patients []*Patient `json:"patients"`
	Patient  *Patient   `json:"patient"`
}

func envelope(message string, patients []*Patient, p *Patient) Envelope {
	if patients == nil {
		patients = []*Patient{}
	}
	return Envelope{Message: message, Patients: patients, Patient: p}
}

// patientPayload is the client-writable subset of a patient record. The
// provider id is never bound from the request body; ownership comes from
// the authenticated identity alone.
type patientPayload struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	MiddleName  *string `json:"middleName"`
	LastName    string  `json:"lastName"`
	DateOfBirth Date    `json:"dateOfBirth"`
	Status      Status  `json:"status"`
	Address     string  `json:"address"`

	// IsStatusUpdate marks a PUT as a deliberate status change, which
	// appends a status history entry. Ignored on create.
	IsStatusUpdate bool `json:"isStatusUpdate"`
}

func (p patientPayload) empty() bool {
	return p.ID == "" && p.FirstName == "" && p.MiddleName == nil && p.LastName == "" &&
		p.DateOfBirth.IsZero() && p.Status == "" && p.Address == ""
}

func (p patientPayload) toPatient() *Patient {
	middle := p.MiddleName
	if middle != nil && *middle == "" {
		middle = nil
	}
	return &Patient{
		FirstName:   p.FirstName,
		MiddleName:  middle,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Status:      p.Status,
		Address:     p.Address,
	}
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// allowedMethods is also the Allow header value on 405 responses.
const allowedMethods = "GET, POST, PUT, DELETE"

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.PUT("/patients", h.UpdatePatient)
	api.DELETE("/patients", h.DeletePatient)

	// Unsupported methods on the collection get an explicit 405 with an
	// Allow header instead of echo's default error shape.
	for _, m := range []string{http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		api.Add(m, "/patients", h.MethodNotAllowed)
	}
}

func (h *Handler) ListPatients(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	patients, err := h.svc.List(c.Request().Context(), ident)
	if err != nil {
		log.Error().Err(err).Str("provider_id", ident.ID).Msg("list patients failed")
		return c.JSON(http.StatusInternalServerError, envelope("Error fetching patients", nil, nil))
	}
	return c.JSON(http.StatusOK, envelope("Patients fetched successfully", patients, nil))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var payload patientPayload
	if err := c.Bind(&payload); err != nil || payload.empty() {
		return c.JSON(http.StatusBadRequest, envelope("Missing patient data", nil, nil))
	}

	ident := auth.IdentityFromContext(c.Request().Context())
	p := payload.toPatient()
	if err := h.svc.Create(c.Request().Context(), ident, p); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, envelope(verr.Message, nil, nil))
		}
		log.Error().Err(err).Str("provider_id", ident.ID).Msg("create patient failed")
		return c.JSON(http.StatusInternalServerError, envelope("There was an error adding the patient", nil, nil))
	}
	return c.JSON(http.StatusCreated, envelope("Patient added successfully", nil, p))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var payload patientPayload
	if err := c.Bind(&payload); err != nil || payload.empty() {
		return c.JSON(http.StatusBadRequest, envelope("Missing patient data", nil, nil))
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		// A malformed id can never match a row.
		return c.JSON(http.StatusNotFound, envelope("Patient not found", nil, nil))
	}

	ident := auth.IdentityFromContext(c.Request().Context())
	p := payload.toPatient()
	p.ID = id
	updated, err := h.svc.Update(c.Request().Context(), ident, p, payload.IsStatusUpdate)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, envelope(verr.Message, nil, nil))
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, envelope("Patient not found", nil, nil))
		}
		log.Error().Err(err).Str("patient_id", id.String()).Msg("update patient failed")
		return c.JSON(http.StatusInternalServerError, envelope("There was an error updating the patient", nil, nil))
	}
	return c.JSON(http.StatusOK, envelope("Patient updated successfully", nil, updated))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	var payload struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&payload); err != nil || strings.TrimSpace(payload.ID) == "" {
		return c.JSON(http.StatusBadRequest, envelope("Patient ID is required", nil, nil))
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, envelope("Patient not found", nil, nil))
	}

	ident := auth.IdentityFromContext(c.Request().Context())
	snapshot, err := h.svc.Delete(c.Request().Context(), ident, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope("Patient not found", nil, nil))
		}
		log.Error().Err(err).Str("patient_id", id.String()).Msg("delete patient failed")
		return c.JSON(http.StatusInternalServerError, envelope("There was an error deleting the patient", nil, nil))
	}
	return c.JSON(http.StatusOK, envelope("Patient deleted successfully", nil, snapshot))
}

func (h *Handler) MethodNotAllowed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, allowedMethods)
	msg := fmt.Sprintf("Method %s Not Allowed", c.Request().Method)
	return c.JSON(http.StatusMethodNotAllowed, envelope(msg, nil, nil))
}
