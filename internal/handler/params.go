package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
	"github.com/ucl-grp21/student-records-api/pkg/response"
)

// idParam parses a numeric path parameter, responding with 400 on garbage
// input. The bool reports whether the caller may proceed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name))
		return 0, false
	}
	return id, true
}
