package api

import (
	"net/http"
	"testing"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNotificationHandler_list(t *testing.T) {
	mockService := &MockNotificationUseCase{}
	handler := NewNotificationHandler(mockService)
	c, w := newTestContext("GET", "/api/v1/notifications?limit=5", nil, "rider-1")
	mockService.On("ListForUser", c.Request.Context(), "rider-1", 5).
		Return([]domain.Notification{{ID: "n-1", UserID: "rider-1", Status: domain.NotificationUnread}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"n-1"`)
	mockService.AssertExpectations(t)
}

func TestNotificationHandler_list_badLimit(t *testing.T) {
	handler := NewNotificationHandler(&MockNotificationUseCase{})
	c, w := newTestContext("GET", "/api/v1/notifications?limit=zero", nil, "rider-1")

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_markRead_forbidden(t *testing.T) {
	mockService := &MockNotificationUseCase{}
	handler := NewNotificationHandler(mockService)
	c, w := newTestContext("PUT", "/api/v1/notifications/n-1/read", nil, "driver-1")
	c.Params = gin.Params{{Key: "id", Value: "n-1"}}
	mockService.On("MarkRead", c.Request.Context(), "n-1", "driver-1").
		Return(nil, domain.Forbidden("notification belongs to another user"))

	handler.markRead(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
