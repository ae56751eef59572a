package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucl-grp21/student-records-api/internal/service"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
	"github.com/ucl-grp21/student-records-api/pkg/response"
)

// RegistrationHandler exposes registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	registrations, err := h.registrations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// Create godoc
// @Summary Register a student for a module
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterModuleRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req service.RegisterModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// ListByStudent godoc
// @Summary List a student's registrations
// @Tags Registrations
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/student/{studentId} [get]
func (h *RegistrationHandler) ListByStudent(c *gin.Context) {
	studentID, ok := idParam(c, "studentId")
	if !ok {
		return
	}
	registrations, err := h.registrations.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}
