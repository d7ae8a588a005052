package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/services"
)

// ErrorResponse writes the wire error shape {error, details?}.
func ErrorResponse(c *gin.Context, status int, message string, details interface{}) {
	body := gin.H{"error": message}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

// HandleServiceError maps the typed service errors onto HTTP statuses.
// Anything untyped is an internal error: logged with the request id,
// returned with a generic message.
func HandleServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	if e, ok := services.IsUnauthenticatedError(err); ok {
		ErrorResponse(c, http.StatusUnauthorized, e.Message, nil)
		return
	}
	if e, ok := services.IsForbiddenError(err); ok {
		ErrorResponse(c, http.StatusForbidden, e.Message, nil)
		return
	}
	if e, ok := services.IsNotFoundError(err); ok {
		ErrorResponse(c, http.StatusNotFound, e.Message, nil)
		return
	}
	if e, ok := services.IsBadRequestError(err); ok {
		ErrorResponse(c, http.StatusBadRequest, e.Message, e.Details)
		return
	}
	if e, ok := services.IsConflictError(err); ok {
		ErrorResponse(c, http.StatusConflict, e.Message, nil)
		return
	}

	logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("request_id"),
	}).Error("Unhandled service error")
	ErrorResponse(c, http.StatusInternalServerError, "Internal Server Error", nil)
}

// idString renders a bigint identifier as a decimal string; large ids would
// lose precision as JSON numbers.
func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// idStringPtr renders an optional identifier, nil stays nil.
func idStringPtr(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}

// parseID parses a decimal-string identifier from a path or payload.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
