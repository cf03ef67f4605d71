package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

// Envelope is the success body.
// swagger:model
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: item not found
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// Set when the failure is about stock.
	Available *int   `json:"available,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Data: data, Message: message})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, HTTPError{Error: msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RetryAfter is the Retry-After hint, in seconds, sent with retryable failures.
const RetryAfter = 1

// Fail writes err with the status of its kind. Unclassified and unavailable
// errors are reported as 500 with the cause in details.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)

	e, ok := apperr.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "internal server error", Details: err.Error()})
		return
	}

	body := HTTPError{Error: e.Msg}
	switch {
	case e.Kind == apperr.KindInsufficientStock,
		e.Kind == apperr.KindConflict && e.Unit != "":
		// A conflict with a unit is a lost stock race.
		avail := e.Available
		body.Available = &avail
		body.Unit = e.Unit
	case e.Kind == apperr.KindUnavailable, e.Kind == apperr.KindInternal:
		body.Details = err.Error()
	}
	if e.Retryable() {
		c.Header("Retry-After", strconv.Itoa(RetryAfter))
	}
	c.JSON(StatusFor(e.Kind), body)
}
