package sqlite

const videoColumns = `
        id, youtube_id, url, title, description, channel_name,
        duration, thumbnail_url, published_at, preferred_language,
        status, error_message, processing_started_at,
        processing_completed_at, created_at, updated_at`

const (
	insertVideoQuery = `
        INSERT INTO videos (
            id, youtube_id, url, title, description, channel_name,
            duration, thumbnail_url, published_at, preferred_language,
            status, error_message, processing_started_at,
            processing_completed_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	updateVideoQuery = `
        UPDATE videos SET
            title = ?,
            description = ?,
            channel_name = ?,
            duration = ?,
            thumbnail_url = ?,
            published_at = ?,
            preferred_language = ?,
            status = ?,
            error_message = ?,
            processing_started_at = ?,
            processing_completed_at = ?,
            updated_at = ?
        WHERE id = ?
    `

	getVideoQuery = `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`

	getVideoByYouTubeIDQuery = `SELECT ` + videoColumns + ` FROM videos WHERE youtube_id = ?`

	listVideosQuery = `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`

	listVideosByStatusQuery = `SELECT ` + videoColumns + `
        FROM videos WHERE status = ? ORDER BY created_at DESC`

	getStaleVideosQuery = `SELECT ` + videoColumns + `
        FROM videos WHERE status = 'processing' AND updated_at < ?`

	deleteVideoQuery = `DELETE FROM videos WHERE id = ?`

	upsertTranscriptQuery = `
        INSERT INTO transcripts (
            video_id, content, enhanced, summary, language,
            is_auto_generated, word_count, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            content = excluded.content,
            enhanced = excluded.enhanced,
            summary = excluded.summary,
            language = excluded.language,
            is_auto_generated = excluded.is_auto_generated,
            word_count = excluded.word_count,
            updated_at = excluded.updated_at
    `

	getTranscriptQuery = `
        SELECT video_id, content, enhanced, summary, language,
               is_auto_generated, word_count, created_at, updated_at
        FROM transcripts WHERE video_id = ?
    `

	updateSummaryQuery = `
        UPDATE transcripts SET summary = ?, updated_at = ? WHERE video_id = ?
    `
)
