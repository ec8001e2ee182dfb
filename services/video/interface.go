package video

import (
	"context"
	"time"

	"ytdigest/models"
	"ytdigest/repository"
)

type Service interface {
	// Submit validates a YouTube URL, creates a pending video record and
	// queues it for processing.
	Submit(ctx context.Context, req SubmitRequest) (*models.Video, error)

	// Process queues a new pipeline run for a video in a terminal or
	// pending state. Reprocessing a completed video overwrites its
	// transcript on success.
	Process(ctx context.Context, id string) (*models.Video, error)

	// GenerateSummary runs only the summarizer against the stored
	// transcript of a completed video, overwriting any previous summary.
	GenerateSummary(ctx context.Context, id string) (*models.Video, *models.Transcript, error)

	// Get returns a video and its transcript; the transcript is nil when
	// none has been stored yet.
	Get(ctx context.Context, id string) (*models.Video, *models.Transcript, error)

	// List returns videos, optionally filtered by status.
	List(ctx context.Context, status models.Status) ([]*models.Video, error)

	// Delete permanently removes a video and its transcript.
	Delete(ctx context.Context, id string) error

	// Close stops the background workers and the stale-video janitor.
	Close()
}

type SubmitRequest struct {
	URL               string `json:"url"`
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// Archiver exports completed transcripts to long-term storage. Optional.
type Archiver interface {
	Store(ctx context.Context, youtubeID string, transcript *models.Transcript) error
}

type Config struct {
	// Workers is the size of the background worker pool.
	Workers int `json:"workers"`

	// QueueSize bounds the number of queued pipeline runs.
	QueueSize int `json:"queue_size"`

	// ProcessTimeout is the maximum time allowed for a single pipeline run.
	ProcessTimeout time.Duration `json:"process_timeout"`

	// StaleTimeout is how long a video may sit in processing before the
	// janitor declares the run dead.
	StaleTimeout time.Duration `json:"stale_timeout"`

	// JanitorInterval is how often the janitor scans for stale videos.
	JanitorInterval time.Duration `json:"janitor_interval"`

	// SummarizeOnProcess runs the summarizer as the final pipeline stage.
	// When disabled, summaries are only produced on demand.
	SummarizeOnProcess bool `json:"summarize_on_process"`
}

type VideoRepository = repository.VideoRepository
type TranscriptRepository = repository.TranscriptRepository
