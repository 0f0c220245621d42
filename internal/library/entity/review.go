package entity

import "time"

type Comment struct {
	ID          int64
	BookID      int64
	UserID      int64
	Content     string
	Rating      int16
	PublishedAt time.Time
	Visible     bool
	Moderated   bool
	UpdatedAt   time.Time
}

type Rating struct {
	ID          int64
	UserID      int64
	BookID      int64
	Rating      int16
	Title       string
	Comment     string
	Recommended bool
	RatedAt     time.Time
}
