package search

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/patientdesk/patientdesk/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/search", h.SearchPatients)

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		api.Add(m, "/patients/search", h.MethodNotAllowed)
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Message  string             `json:"message,omitempty"`
	Patients []*patient.Patient `json:"patients"`
}

func (h *Handler) SearchPatients(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message:  "Query must be at least 3 characters",
			Patients: []*patient.Patient{},
		})
	}

	patients, err := h.svc.Search(c.Request().Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, ErrQueryTooShort):
			return c.JSON(http.StatusBadRequest, searchResponse{
				Message:  "Query must be at least 3 characters",
				Patients: []*patient.Patient{},
			})
		case errors.Is(err, ErrFilterParse):
			return c.JSON(http.StatusInternalServerError, searchResponse{
				Message:  "Failed to parse search query",
				Patients: []*patient.Patient{},
			})
		}
		log.Error().Err(err).Msg("search fetch failed")
		return c.JSON(http.StatusInternalServerError, searchResponse{
			Message:  "Error fetching patients",
			Patients: []*patient.Patient{},
		})
	}
	if patients == nil {
		patients = []*patient.Patient{}
	}
	return c.JSON(http.StatusOK, searchResponse{Patients: patients})
}

func (h *Handler) MethodNotAllowed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)
	msg := fmt.Sprintf("Method %s Not Allowed", c.Request().Method)
	return c.JSON(http.StatusMethodNotAllowed, searchResponse{Message: msg, Patients: []*patient.Patient{}})
}
