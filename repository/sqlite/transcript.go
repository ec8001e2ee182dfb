package sqlite

import (
	"context"
	"database/sql"
	"time"

	"ytdigest/errors"
	"ytdigest/models"
)

type TranscriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Upsert(ctx context.Context, transcript *models.Transcript) error {
	const op = "SQLiteTranscriptRepository.Upsert"

	for i := 0; i < 3; i++ { // Simple retry for lock contention
		err := r.upsert(ctx, transcript)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "Failed to save transcript")
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return errors.Internal(op, nil, "Failed after retries")
}

func (r *TranscriptRepository) upsert(ctx context.Context, transcript *models.Transcript) error {
	_, err := r.db.ExecContext(ctx, upsertTranscriptQuery,
		transcript.VideoID,
		transcript.Content,
		transcript.Enhanced,
		transcript.Summary,
		transcript.Language,
		transcript.IsAutoGenerated,
		transcript.WordCount,
		transcript.CreatedAt,
		transcript.UpdatedAt,
	)
	return err
}

func (r *TranscriptRepository) FindByVideoID(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "SQLiteTranscriptRepository.FindByVideoID"

	transcript := &models.Transcript{}
	err := r.db.QueryRowContext(ctx, getTranscriptQuery, videoID).Scan(
		&transcript.VideoID,
		&transcript.Content,
		&transcript.Enhanced,
		&transcript.Summary,
		&transcript.Language,
		&transcript.IsAutoGenerated,
		&transcript.WordCount,
		&transcript.CreatedAt,
		&transcript.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcript not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcript")
	}

	return transcript, nil
}

func (r *TranscriptRepository) UpdateSummary(ctx context.Context, videoID, summary string) error {
	const op = "SQLiteTranscriptRepository.UpdateSummary"

	res, err := r.db.ExecContext(ctx, updateSummaryQuery, summary, time.Now(), videoID)
	if err != nil {
		return errors.Internal(op, err, "Failed to update summary")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Internal(op, err, "Failed to read affected rows")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Transcript not found")
	}

	return nil
}
