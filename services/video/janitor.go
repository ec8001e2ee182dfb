package video

import (
	"context"
	"time"
)

// runJanitor periodically fails videos stuck in processing, for example
// after a crash between the processing write and the terminal write.
func (s *service) runJanitor() {
	ticker := time.NewTicker(s.config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.janitorQuit:
			return
		case <-ticker.C:
			s.reapStale()
		}
	}
}

func (s *service) reapStale() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := s.videos.FindStale(ctx, time.Now().Add(-s.config.StaleTimeout))
	if err != nil {
		s.logger.WithError(err).Error("Failed to scan for stale videos")
		return
	}

	for _, video := range stale {
		s.logger.WithField("video_id", video.ID).
			Warn("Marking stale processing video as failed")
		video.MarkFailed("processing timed out")
		if err := s.videos.Update(ctx, video); err != nil {
			s.logger.WithError(err).WithField("video_id", video.ID).
				Error("Failed to fail stale video")
		}
	}
}
