package entities

import "time"

type VideoStatus string

const (
	StatusProcessing VideoStatus = "processing"
	StatusReady      VideoStatus = "ready"
	StatusError      VideoStatus = "error"
)

// Terminal reports whether no further status transition is allowed.
func (s VideoStatus) Terminal() bool {
	return s == StatusReady || s == StatusError
}

type Video struct {
	ID               int64       `json:"id"`
	UserID           string      `json:"user_id"`
	Title            string      `json:"title"`
	Slug             string      `json:"slug"`
	Status           VideoStatus `json:"status"`
	FolderPath       string      `json:"folder_path"`
	Qualities        []string    `json:"qualities,omitempty"`
	CreatedTimestamp time.Time   `json:"created_timestamp"`
	UpdatedTimestamp time.Time   `json:"updated_timestamp"`
}
