package model

import "time"

// Notification is a message addressed to a single user.
type Notification struct {
	ID        int64
	UserID    int64
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// Media describes a stored upload.
type Media struct {
	Filename string
	Key      string
	URL      string
	Size     int64
}
