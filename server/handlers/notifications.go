package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quoteserver/server/services"
)

// NotificationHandler обработчик уведомлений оператора
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler создает новый обработчик уведомлений
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// @Summary List notifications
// @Description Returns operator notifications, newest first
// @Tags notifications
// @Produce json
// @Param limit query int false "Maximum number of notifications" default(50)
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} JSONResponse "Notification list"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		SendJSONError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	notifications, err := h.service.GetNotifications(c.Request.Context(), limit, unreadOnly)
	if err != nil {
		HandleServiceError(c, nil, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// @Summary Mark notification as read
// @Description Marks a single notification as read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} JSONResponse "Notification marked as read"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		SendJSONError(c, http.StatusBadRequest, "notification id must be an integer")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		HandleServiceError(c, nil, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{"id": id, "read": true})
}
