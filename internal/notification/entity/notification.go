package entity

import (
	"time"
)

type Template struct {
	ID         int64
	TriggerKey TriggerKey
	Channel    Channel
	Title      string
	Body       string
}

// Notification is an in-app inbox entry.
type Notification struct {
	ID         int64
	UserID     int64
	TriggerKey TriggerKey
	Title      string
	Body       string
	Data       map[string]any
	ReadAt     *time.Time
	CreatedAt  time.Time
}

type DeliveryLog struct {
	ID         int64
	UserID     int64
	TriggerKey TriggerKey
	Channel    Channel
	Recipient  string
	Status     DeliveryStatus
	Attempts   int
	LastError  string
	SentAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type UpdateDeliveryLog struct {
	ID        int64
	Status    DeliveryStatus
	Attempts  int
	LastError string
	SentAt    *time.Time
	UpdatedAt time.Time
}

type InboxFilter struct {
	UserID int64
	Status InboxStatus
	Limit  int32
	Offset int32
}
