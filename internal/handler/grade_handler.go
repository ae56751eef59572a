package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucl-grp21/student-records-api/internal/service"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
	"github.com/ucl-grp21/student-records-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	grades, err := h.grades.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Add godoc
// @Summary Record a grade for a registered student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.AddGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/addGrade [post]
func (h *GradeHandler) Add(c *gin.Context) {
	var req service.AddGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Legacy clients expect 200 here, not 201.
	response.JSON(c, http.StatusOK, grade, nil)
}

// Update godoc
// @Summary Update a grade's score
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "New score"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.UpdateScore(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetForModule godoc
// @Summary Get the grade a student holds in a module
// @Tags Grades
// @Produce json
// @Param studentId path int true "Student ID"
// @Param moduleCode path string true "Module code"
// @Success 200 {object} response.Envelope
// @Router /grades/student/{studentId}/module/{moduleCode} [get]
func (h *GradeHandler) GetForModule(c *gin.Context) {
	studentID, ok := idParam(c, "studentId")
	if !ok {
		return
	}
	grade, err := h.grades.GetForModule(c.Request.Context(), studentID, c.Param("moduleCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
