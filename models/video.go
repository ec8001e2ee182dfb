package models

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type Video struct {
	ID                    string     `json:"id"`
	YouTubeID             string     `json:"youtube_id"`
	URL                   string     `json:"url"`
	Title                 string     `json:"title,omitempty"`
	Description           string     `json:"description,omitempty"`
	ChannelName           string     `json:"channel_name,omitempty"`
	Duration              int64      `json:"duration,omitempty"`
	ThumbnailURL          string     `json:"thumbnail_url,omitempty"`
	PublishedAt           *time.Time `json:"published_at,omitempty"`
	PreferredLanguage     string     `json:"preferred_language,omitempty"`
	Status                Status     `json:"status"`
	ErrorMessage          string     `json:"error_message,omitempty"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Status check methods
func (v *Video) IsPending() bool    { return v.Status == StatusPending }
func (v *Video) IsProcessing() bool { return v.Status == StatusProcessing }
func (v *Video) IsCompleted() bool  { return v.Status == StatusCompleted }
func (v *Video) IsFailed() bool     { return v.Status == StatusFailed }

// IsTerminal reports whether no further transition happens without a new
// user action.
func (v *Video) IsTerminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusFailed
}

// IsStale checks if the video has been stuck in processing for too long.
func (v *Video) IsStale(timeout time.Duration) bool {
	if v.Status != StatusProcessing {
		return false
	}
	since := v.UpdatedAt
	if v.ProcessingStartedAt != nil {
		since = *v.ProcessingStartedAt
	}
	return time.Since(since) > timeout
}

// MarkProcessing records the start of a pipeline run. Any previous error
// is cleared so failed videos can be retried cleanly.
func (v *Video) MarkProcessing() {
	now := time.Now()
	v.Status = StatusProcessing
	v.ErrorMessage = ""
	v.ProcessingStartedAt = &now
	v.ProcessingCompletedAt = nil
	v.UpdatedAt = now
}

func (v *Video) MarkCompleted() {
	now := time.Now()
	v.Status = StatusCompleted
	v.ErrorMessage = ""
	v.ProcessingCompletedAt = &now
	v.UpdatedAt = now
}

func (v *Video) MarkFailed(message string) {
	now := time.Now()
	v.Status = StatusFailed
	v.ErrorMessage = message
	v.ProcessingCompletedAt = &now
	v.UpdatedAt = now
}

// ProcessingDuration returns how long the last pipeline run took, or zero
// if the video never reached a terminal state.
func (v *Video) ProcessingDuration() time.Duration {
	if v.ProcessingStartedAt == nil || v.ProcessingCompletedAt == nil {
		return 0
	}
	return v.ProcessingCompletedAt.Sub(*v.ProcessingStartedAt)
}
