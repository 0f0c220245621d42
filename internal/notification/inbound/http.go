package inbound

import (
	"net/http"
	"strconv"

	"github.com/shandysiswandi/libris/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notifications", end.ListInbox)
	r.GET("/api/v1/notifications/unread-count", end.UnreadCount)
	r.PATCH("/api/v1/notifications/:id/read", end.MarkInboxRead)
	r.PUT("/api/v1/notifications/read-all", end.MarkAllInboxRead)
	r.DELETE("/api/v1/notifications/:id", end.DeleteInbox)

	r.GETRaw("/api/v1/notifications/stream", http.HandlerFunc(end.StreamNotifications))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
