// Package tasks defines the messages that are sent to Kafka.
package tasks

import "time"

// VideoUploadedTask is published after a video object has been committed to storage.
type VideoUploadedTask struct {
	EventID     string    `json:"event_id"`
	VideoID     uint      `json:"video_id"`
	GroupID     uint      `json:"group_id"`
	ObjectKey   string    `json:"object_key"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	Parts       int       `json:"parts"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
