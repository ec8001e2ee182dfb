package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"ytdigest/errors"
	"ytdigest/models"
)

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	const op = "SQLiteVideoRepository.Create"

	_, err := r.db.ExecContext(ctx, insertVideoQuery,
		video.ID,
		video.YouTubeID,
		video.URL,
		video.Title,
		video.Description,
		video.ChannelName,
		nullInt64(video.Duration),
		video.ThumbnailURL,
		nullTime(video.PublishedAt),
		video.PreferredLanguage,
		string(video.Status),
		video.ErrorMessage,
		nullTime(video.ProcessingStartedAt),
		nullTime(video.ProcessingCompletedAt),
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.Conflict(op, err, "Video already exists")
		}
		return errors.Internal(op, err, "Failed to create video")
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	const op = "SQLiteVideoRepository.Update"

	for i := 0; i < 3; i++ { // Simple retry for lock contention
		err := r.update(ctx, video)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "Failed to update video")
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return errors.Internal(op, nil, "Failed after retries")
}

func (r *VideoRepository) update(ctx context.Context, video *models.Video) error {
	_, err := r.db.ExecContext(ctx, updateVideoQuery,
		video.Title,
		video.Description,
		video.ChannelName,
		nullInt64(video.Duration),
		video.ThumbnailURL,
		nullTime(video.PublishedAt),
		video.PreferredLanguage,
		string(video.Status),
		video.ErrorMessage,
		nullTime(video.ProcessingStartedAt),
		nullTime(video.ProcessingCompletedAt),
		video.UpdatedAt,
		video.ID,
	)
	return err
}

// MarkProcessing performs a compare-and-swap on the stored status: the
// transition to processing happens only if the current status still matches
// one of the given states, so concurrent process requests cannot start two
// pipeline runs for the same video.
func (r *VideoRepository) MarkProcessing(ctx context.Context, id string, from []models.Status) (bool, error) {
	const op = "SQLiteVideoRepository.MarkProcessing"

	if len(from) == 0 {
		return false, errors.Internal(op, nil, "No source states given")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(from)), ", ")
	query := `
        UPDATE videos SET
            status = 'processing',
            error_message = '',
            processing_started_at = ?,
            processing_completed_at = NULL,
            updated_at = ?
        WHERE id = ? AND status IN (` + placeholders + `)`

	now := time.Now()
	args := []interface{}{now, now, id}
	for _, s := range from {
		args = append(args, string(s))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Internal(op, err, "Failed to mark video processing")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Internal(op, err, "Failed to read affected rows")
	}

	return affected == 1, nil
}

func (r *VideoRepository) Find(ctx context.Context, id string) (*models.Video, error) {
	const op = "SQLiteVideoRepository.Find"
	return r.findOne(ctx, op, getVideoQuery, id)
}

func (r *VideoRepository) FindByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error) {
	const op = "SQLiteVideoRepository.FindByYouTubeID"
	return r.findOne(ctx, op, getVideoByYouTubeIDQuery, youtubeID)
}

func (r *VideoRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*models.Video, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	video, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Video not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query video")
	}
	return video, nil
}

func (r *VideoRepository) List(ctx context.Context, status models.Status) ([]*models.Video, error) {
	const op = "SQLiteVideoRepository.List"

	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = r.db.QueryContext(ctx, listVideosQuery)
	} else {
		rows, err = r.db.QueryContext(ctx, listVideosByStatusQuery, string(status))
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to list videos")
	}
	defer rows.Close()

	return collectVideos(op, rows)
}

func (r *VideoRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*models.Video, error) {
	const op = "SQLiteVideoRepository.FindStale"

	rows, err := r.db.QueryContext(ctx, getStaleVideosQuery, olderThan)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query stale videos")
	}
	defer rows.Close()

	return collectVideos(op, rows)
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	const op = "SQLiteVideoRepository.Delete"

	res, err := r.db.ExecContext(ctx, deleteVideoQuery, id)
	if err != nil {
		return errors.Internal(op, err, "Failed to delete video")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Internal(op, err, "Failed to read affected rows")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Video not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	video := &models.Video{}
	var (
		status      string
		duration    sql.NullInt64
		publishedAt sql.NullTime
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(
		&video.ID,
		&video.YouTubeID,
		&video.URL,
		&video.Title,
		&video.Description,
		&video.ChannelName,
		&duration,
		&video.ThumbnailURL,
		&publishedAt,
		&video.PreferredLanguage,
		&status,
		&video.ErrorMessage,
		&startedAt,
		&completedAt,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Status = models.Status(status)
	if duration.Valid {
		video.Duration = duration.Int64
	}
	video.PublishedAt = timePtr(publishedAt)
	video.ProcessingStartedAt = timePtr(startedAt)
	video.ProcessingCompletedAt = timePtr(completedAt)

	return video, nil
}

func collectVideos(op string, rows *sql.Rows) ([]*models.Video, error) {
	var videos []*models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, errors.Internal(op, err, "Failed to scan video")
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to iterate videos")
	}
	return videos, nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
