package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/carpool/internal/service/notifications"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service notifications.NotificationUseCase
}

func NewNotificationHandler(service notifications.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.PUT("/read-all", h.markAllRead)
	router.GET("/unread-count", h.unreadCount)
}

type notificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

func (h *NotificationHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]notificationResponse, 0, len(all))
	for _, n := range all {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) markAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), c.GetString(ctxUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

func (h *NotificationHandler) unreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
