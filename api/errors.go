package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindRouteUnavailable:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidTransition, domain.KindInsufficientSeats, domain.KindConflict:
		return http.StatusConflict
	case domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its taxonomy kind. Internal errors keep their
// detail in the log only.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	message := err.Error()

	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" {
		message = de.Msg
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind, status, message = domain.KindStorageUnavailable, http.StatusServiceUnavailable, "request timed out"
	case status == http.StatusInternalServerError:
		message = "internal error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Kind: string(kind), Message: message}})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, domain.Validation("%s", message))
}
