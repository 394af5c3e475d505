package api

import (
	"net/http"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses. The code
// field keeps kinds distinguishable where statuses collide.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAuthorization:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict, domain.KindCapacity:
		status = http.StatusConflict
	case domain.KindState:
		status = http.StatusUnprocessableEntity
	}

	body := gin.H{"error": err.Error()}
	if kind != "" {
		body["code"] = string(kind)
	}
	c.JSON(status, body)
}
