package inbound

import (
	"time"

	"github.com/shandysiswandi/libris/internal/notification/entity"
)

type NotificationResponse struct {
	ID         string         `json:"id"`
	TriggerKey string         `json:"trigger_key"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data" swaggertype:"object"`
	ReadAt     *time.Time     `json:"read_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func toNotification(n entity.Notification) NotificationResponse {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}

	return NotificationResponse{
		ID:         formatID(n.ID),
		TriggerKey: n.TriggerKey.String(),
		Title:      n.Title,
		Body:       n.Body,
		Data:       data,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}
