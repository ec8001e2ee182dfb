package video

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ytdigest/enhance"
	"ytdigest/errors"
	"ytdigest/models"
	"ytdigest/summarize"
	"ytdigest/transcript"
	"ytdigest/validation"
	"ytdigest/youtube"
)

type service struct {
	videos      VideoRepository
	transcripts TranscriptRepository
	fetcher     transcript.Fetcher
	summarizer  summarize.Summarizer
	archiver    Archiver
	validator   *validation.Validator
	config      Config
	queue       *jobQueue
	janitorQuit chan struct{}
	logger      *logrus.Logger
}

func NewService(
	videos VideoRepository,
	transcripts TranscriptRepository,
	fetcher transcript.Fetcher,
	summarizer summarize.Summarizer,
	archiver Archiver,
	validator *validation.Validator,
	config Config,
) Service {
	s := &service{
		videos:      videos,
		transcripts: transcripts,
		fetcher:     fetcher,
		summarizer:  summarizer,
		archiver:    archiver,
		validator:   validator,
		config:      config,
		queue:       newJobQueue(config.QueueSize),
		janitorQuit: make(chan struct{}),
		logger:      logrus.StandardLogger(),
	}

	s.queue.Start(config.Workers, s.runPipeline)

	if config.JanitorInterval > 0 && config.StaleTimeout > 0 {
		go s.runJanitor()
	}

	return s
}

func (s *service) Close() {
	close(s.janitorQuit)
	s.queue.Close()
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*models.Video, error) {
	const op = "VideoService.Submit"
	logger := s.logger.WithField("url", req.URL)

	if err := s.validator.ValidateURL(req.URL); err != nil {
		logger.WithError(err).Info("URL validation failed")
		return nil, err
	}
	if err := s.validator.ValidateLanguage(req.PreferredLanguage); err != nil {
		return nil, err
	}

	youtubeID, err := youtube.ExtractVideoID(req.URL)
	if err != nil {
		return nil, err
	}

	if existing, err := s.videos.FindByYouTubeID(ctx, youtubeID); err == nil {
		return existing, errors.Conflict(op, nil, "Video has already been submitted")
	}

	now := time.Now()
	video := &models.Video{
		ID:                uuid.New().String(),
		YouTubeID:         youtubeID,
		URL:               req.URL,
		Title:             req.Title,
		Description:       req.Description,
		PreferredLanguage: req.PreferredLanguage,
		Status:            models.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	logger.WithField("video_id", video.ID).Info("Video submitted")

	// Queue saturation is not fatal for submission: the record stays
	// pending and a manual process request can retry later.
	if err := s.queue.Submit(&processJob{video: video, fromStatus: models.StatusPending}); err != nil {
		logger.WithError(err).Warn("Failed to queue processing for submitted video")
	}

	return video, nil
}

func (s *service) Process(ctx context.Context, id string) (*models.Video, error) {
	const op = "VideoService.Process"

	if id == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}

	video, err := s.videos.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if video.IsProcessing() && !video.IsStale(s.config.StaleTimeout) {
		return nil, errors.Conflict(op, nil, "Video is already being processed")
	}

	if err := s.queue.Submit(&processJob{video: video, fromStatus: video.Status}); err != nil {
		return nil, errors.Unavailable(op, err, "Processing queue is full, try again later")
	}

	s.logger.WithFields(logrus.Fields{
		"video_id": video.ID,
		"status":   video.Status,
	}).Info("Queued processing")

	return video, nil
}

// runPipeline executes one full fetch, enhance, summarize run for a queued
// job. Exactly one status write happens before the work begins and exactly
// one terminal write afterward; a catch-all guarantees the video never
// stays stuck in processing because of an unexpected failure.
func (s *service) runPipeline(job *processJob) {
	video := job.video
	logger := s.logger.WithField("video_id", video.ID)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ProcessTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Pipeline panicked")
			s.failVideo(video, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Guard against concurrent runs: the transition to processing only
	// succeeds if the stored status still matches what was read at
	// dispatch time.
	ok, err := s.videos.MarkProcessing(ctx, video.ID, []models.Status{job.fromStatus})
	if err != nil {
		logger.WithError(err).Error("Failed to mark video processing")
		return
	}
	if !ok {
		logger.WithField("expected_status", job.fromStatus).
			Info("Skipping run, status changed since dispatch")
		return
	}
	video.MarkProcessing()

	result, err := s.fetcher.Fetch(ctx, video.YouTubeID, video.PreferredLanguage)
	if err != nil {
		logger.WithError(err).Warn("Transcript fetch failed")
		s.failVideo(video, err.Error())
		return
	}

	raw := result.Text()
	enhanced := enhance.Beautify(result.Segments, raw)

	var summary string
	if s.config.SummarizeOnProcess && s.summarizer != nil {
		summary, err = s.summarizer.Summarize(ctx, raw)
		if err != nil {
			logger.WithError(err).Warn("Summary generation failed")
			s.failVideo(video, err.Error())
			return
		}
	}

	// Nothing is persisted until the whole pipeline has succeeded, so a
	// failed attempt never clobbers a transcript from an earlier run.
	now := time.Now()
	tr := &models.Transcript{
		VideoID:         video.ID,
		Content:         raw,
		Enhanced:        enhanced,
		Summary:         summary,
		Language:        result.Language,
		IsAutoGenerated: result.IsGenerated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	tr.CountWords()

	if err := s.transcripts.Upsert(ctx, tr); err != nil {
		logger.WithError(err).Error("Failed to save transcript")
		s.failVideo(video, "failed to save transcript: "+err.Error())
		return
	}

	if err := s.completeVideo(video); err != nil {
		logger.WithError(err).Error("Failed to save completed video")
		return
	}

	logger.WithFields(logrus.Fields{
		"language":   tr.Language,
		"word_count": tr.WordCount,
		"duration":   video.ProcessingDuration(),
	}).Info("Video processed")

	s.archiveTranscript(video.YouTubeID, tr)
}

// completeVideo records the terminal success. Like failVideo it uses a
// fresh context: once the transcript is saved, a pipeline timeout must not
// strand the video in processing.
func (s *service) completeVideo(video *models.Video) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	video.MarkCompleted()
	return s.videos.Update(ctx, video)
}

// failVideo records the terminal failure. A fresh context is used so the
// write succeeds even when the pipeline context has already expired.
func (s *service) failVideo(video *models.Video, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	video.MarkFailed(message)
	if err := s.videos.Update(ctx, video); err != nil {
		s.logger.WithError(err).WithField("video_id", video.ID).
			Error("Failed to record video failure")
	}
}

func (s *service) archiveTranscript(youtubeID string, tr *models.Transcript) {
	if s.archiver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Archive failures are logged and swallowed; the database remains the
	// source of truth.
	if err := s.archiver.Store(ctx, youtubeID, tr); err != nil {
		s.logger.WithError(err).WithField("youtube_id", youtubeID).
			Warn("Failed to archive transcript")
	}
}

func (s *service) GenerateSummary(ctx context.Context, id string) (*models.Video, *models.Transcript, error) {
	const op = "VideoService.GenerateSummary"
	logger := s.logger.WithField("video_id", id)

	if id == "" {
		return nil, nil, errors.InvalidInput(op, nil, "ID is required")
	}

	video, err := s.videos.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !video.IsCompleted() {
		return nil, nil, errors.InvalidInput(op, nil, "Video must be processed before summarizing")
	}

	tr, err := s.transcripts.FindByVideoID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, errors.InvalidInput(op, nil, "Video has no stored transcript")
		}
		return nil, nil, err
	}
	if !tr.HasContent() {
		return nil, nil, errors.InvalidInput(op, nil, "Stored transcript is empty")
	}

	if s.summarizer == nil {
		return nil, nil, errors.Unavailable(op, nil, "No summarizer backend configured")
	}

	summary, err := s.summarizer.Summarize(ctx, tr.Content)
	if err != nil {
		logger.WithError(err).Warn("Summary generation failed")
		if pkgerrors.Is(err, summarize.ErrBackendUnavailable) {
			return nil, nil, errors.Unavailable(op, err, "Summarizer backend is unavailable")
		}
		return nil, nil, errors.Internal(op, err, "Summary generation failed")
	}

	if err := s.transcripts.UpdateSummary(ctx, id, summary); err != nil {
		return nil, nil, err
	}
	tr.Summary = summary
	tr.UpdatedAt = time.Now()

	logger.WithField("summary_length", len(summary)).Info("Summary generated")

	s.archiveTranscript(video.YouTubeID, tr)

	return video, tr, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Video, *models.Transcript, error) {
	const op = "VideoService.Get"

	if id == "" {
		return nil, nil, errors.InvalidInput(op, nil, "ID is required")
	}

	video, err := s.videos.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	tr, err := s.transcripts.FindByVideoID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return video, nil, nil
		}
		return nil, nil, err
	}

	return video, tr, nil
}

func (s *service) List(ctx context.Context, status models.Status) ([]*models.Video, error) {
	const op = "VideoService.List"

	if status != "" && !models.ValidStatus(status) {
		return nil, errors.InvalidInput(op, nil, fmt.Sprintf("Invalid status filter: %s", status))
	}

	return s.videos.List(ctx, status)
}

func (s *service) Delete(ctx context.Context, id string) error {
	const op = "VideoService.Delete"

	if id == "" {
		return errors.InvalidInput(op, nil, "ID is required")
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("video_id", id).Info("Video deleted")
	return nil
}
