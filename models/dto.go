package models

// VideoResponse represents the API response for a video record.
type VideoResponse struct {
	ID                string  `json:"id"`
	YouTubeID         string  `json:"youtube_id"`
	URL               string  `json:"url"`
	Title             string  `json:"title,omitempty"`
	Description       string  `json:"description,omitempty"`
	ChannelName       string  `json:"channel_name,omitempty"`
	ThumbnailURL      string  `json:"thumbnail_url,omitempty"`
	PreferredLanguage string  `json:"preferred_language,omitempty"`
	Status            Status  `json:"status"`
	Error             string  `json:"error,omitempty"`
	ProcessingSeconds float64 `json:"processing_seconds,omitempty"`

	Transcript *TranscriptResponse `json:"transcript,omitempty"`
}

type TranscriptResponse struct {
	Content         string `json:"content"`
	Enhanced        string `json:"enhanced,omitempty"`
	Summary         string `json:"summary,omitempty"`
	Language        string `json:"language"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
	WordCount       int    `json:"word_count"`
}

// StatusResponse is the minimal payload for status polling.
type StatusResponse struct {
	ID                string  `json:"id"`
	YouTubeID         string  `json:"youtube_id"`
	Status            Status  `json:"status"`
	Error             string  `json:"error,omitempty"`
	ProcessingSeconds float64 `json:"processing_seconds,omitempty"`
}

// NewVideoResponse creates a response from a video model and its transcript,
// which may be nil when the video has not completed.
func NewVideoResponse(v *Video, t *Transcript) *VideoResponse {
	resp := &VideoResponse{
		ID:                v.ID,
		YouTubeID:         v.YouTubeID,
		URL:               v.URL,
		Title:             v.Title,
		Description:       v.Description,
		ChannelName:       v.ChannelName,
		ThumbnailURL:      v.ThumbnailURL,
		PreferredLanguage: v.PreferredLanguage,
		Status:            v.Status,
		Error:             v.ErrorMessage,
		ProcessingSeconds: v.ProcessingDuration().Seconds(),
	}

	if t != nil {
		resp.Transcript = &TranscriptResponse{
			Content:         t.Content,
			Enhanced:        t.Enhanced,
			Summary:         t.Summary,
			Language:        t.Language,
			IsAutoGenerated: t.IsAutoGenerated,
			WordCount:       t.WordCount,
		}
	}

	return resp
}

func NewStatusResponse(v *Video) *StatusResponse {
	return &StatusResponse{
		ID:                v.ID,
		YouTubeID:         v.YouTubeID,
		Status:            v.Status,
		Error:             v.ErrorMessage,
		ProcessingSeconds: v.ProcessingDuration().Seconds(),
	}
}
