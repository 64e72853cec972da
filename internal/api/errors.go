package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/gin-gonic/gin"
)

// fail maps a service error onto a status code: 422 for validation
// failures, 404 for missing rows and 500 for everything else.
func fail(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		body := gin.H{"ok": false, "error": ve.Message}
		if len(ve.Problems) > 0 {
			body["problems"] = ve.Problems
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": fmt.Sprintf("invalid body: %v", err)})
}

// notFound builds the error returned when a nested record exists but
// belongs to another project.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}
