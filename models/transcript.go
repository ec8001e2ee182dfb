package models

import (
	"strings"
	"time"
)

// Transcript is owned by exactly one Video. A reprocess replaces it wholesale;
// only the summary field is mutated independently.
type Transcript struct {
	VideoID         string    `json:"video_id"`
	Content         string    `json:"content"`
	Enhanced        string    `json:"enhanced,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Language        string    `json:"language"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
	WordCount       int       `json:"word_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (t *Transcript) HasContent() bool { return strings.TrimSpace(t.Content) != "" }
func (t *Transcript) HasSummary() bool { return strings.TrimSpace(t.Summary) != "" }

// CountWords recomputes the cached word count from the raw content.
func (t *Transcript) CountWords() int {
	t.WordCount = len(strings.Fields(t.Content))
	return t.WordCount
}
