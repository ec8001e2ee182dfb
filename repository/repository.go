package repository

import (
	"context"
	"time"

	"ytdigest/models"
)

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error

	// MarkProcessing atomically transitions the video to processing, but only
	// if its stored status still matches one of the given states. Returns
	// false without error when the guard fails.
	MarkProcessing(ctx context.Context, id string, from []models.Status) (bool, error)

	Find(ctx context.Context, id string) (*models.Video, error)
	FindByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error)
	List(ctx context.Context, status models.Status) ([]*models.Video, error)
	FindStale(ctx context.Context, olderThan time.Time) ([]*models.Video, error)
	Delete(ctx context.Context, id string) error
}

type TranscriptRepository interface {
	// Upsert replaces the transcript for a video wholesale.
	Upsert(ctx context.Context, transcript *models.Transcript) error
	FindByVideoID(ctx context.Context, videoID string) (*models.Transcript, error)
	// UpdateSummary overwrites only the summary field.
	UpdateSummary(ctx context.Context, videoID, summary string) error
}
