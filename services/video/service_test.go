package video

import (
	"context"
	"sync"
	"testing"
	"time"

	"ytdigest/config"
	"ytdigest/errors"
	"ytdigest/models"
	"ytdigest/summarize"
	"ytdigest/transcript"
	"ytdigest/validation"

	pkgerrors "github.com/pkg/errors"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*models.Video

	// denyCAS forces MarkProcessing guard failures.
	denyCAS bool
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*models.Video)}
}

func (r *fakeVideoRepo) Create(ctx context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.videos {
		if existing.YouTubeID == v.YouTubeID {
			return errors.Conflict("fake.Create", nil, "duplicate youtube ID")
		}
	}
	clone := *v
	r.videos[v.ID] = &clone
	return nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, v *models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[v.ID]; !ok {
		return errors.NotFound("fake.Update", nil, "video not found")
	}
	clone := *v
	r.videos[v.ID] = &clone
	return nil
}

func (r *fakeVideoRepo) MarkProcessing(ctx context.Context, id string, from []models.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.denyCAS {
		return false, nil
	}
	v, ok := r.videos[id]
	if !ok {
		return false, errors.NotFound("fake.MarkProcessing", nil, "video not found")
	}
	for _, s := range from {
		if v.Status == s {
			v.MarkProcessing()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVideoRepo) Find(ctx context.Context, id string) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, errors.NotFound("fake.Find", nil, "video not found")
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVideoRepo) FindByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.videos {
		if v.YouTubeID == youtubeID {
			clone := *v
			return &clone, nil
		}
	}
	return nil, errors.NotFound("fake.FindByYouTubeID", nil, "video not found")
}

func (r *fakeVideoRepo) List(ctx context.Context, status models.Status) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if status == "" || v.Status == status {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) FindStale(ctx context.Context, olderThan time.Time) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if v.Status != models.StatusProcessing {
			continue
		}
		since := v.UpdatedAt
		if v.ProcessingStartedAt != nil {
			since = *v.ProcessingStartedAt
		}
		if since.Before(olderThan) {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return errors.NotFound("fake.Delete", nil, "video not found")
	}
	delete(r.videos, id)
	return nil
}

// seed stores a video directly, bypassing Create's duplicate check.
func (r *fakeVideoRepo) seed(v *models.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *v
	r.videos[v.ID] = &clone
}

type fakeTranscriptRepo struct {
	mu          sync.Mutex
	transcripts map[string]*models.Transcript
}

func newFakeTranscriptRepo() *fakeTranscriptRepo {
	return &fakeTranscriptRepo{transcripts: make(map[string]*models.Transcript)}
}

func (r *fakeTranscriptRepo) Upsert(ctx context.Context, t *models.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.transcripts[t.VideoID] = &clone
	return nil
}

func (r *fakeTranscriptRepo) FindByVideoID(ctx context.Context, videoID string) (*models.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transcripts[videoID]
	if !ok {
		return nil, errors.NotFound("fake.FindByVideoID", nil, "transcript not found")
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTranscriptRepo) UpdateSummary(ctx context.Context, videoID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transcripts[videoID]
	if !ok {
		return errors.NotFound("fake.UpdateSummary", nil, "transcript not found")
	}
	t.Summary = summary
	t.UpdatedAt = time.Now()
	return nil
}

type fakeFetcher struct {
	result *transcript.Result
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID, language string) (*transcript.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
	mu      sync.Mutex
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func goodFetcher() *fakeFetcher {
	return &fakeFetcher{result: &transcript.Result{
		VideoID:     "dQw4w9WgXcQ",
		Language:    "en",
		IsGenerated: true,
		Segments: []transcript.Segment{
			{Text: "hello and welcome", Start: 0, Duration: 2},
			{Text: "to the show", Start: 2, Duration: 2},
		},
	}}
}

type testEnv struct {
	service     Service
	videos      *fakeVideoRepo
	transcripts *fakeTranscriptRepo
	fetcher     *fakeFetcher
	summarizer  *fakeSummarizer
}

func newTestEnv(t *testing.T, mutate func(*testEnv, *Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		videos:      newFakeVideoRepo(),
		transcripts: newFakeTranscriptRepo(),
		fetcher:     goodFetcher(),
		summarizer:  &fakeSummarizer{summary: "a concise summary"},
	}

	cfg := Config{
		Workers:            1,
		QueueSize:          8,
		ProcessTimeout:     5 * time.Second,
		StaleTimeout:       time.Minute,
		SummarizeOnProcess: true,
	}
	if mutate != nil {
		mutate(env, &cfg)
	}

	env.service = NewService(
		env.videos,
		env.transcripts,
		env.fetcher,
		env.summarizer,
		nil,
		validation.NewValidator(&config.Config{}),
		cfg,
	)
	t.Cleanup(env.service.Close)

	return env
}

func waitForStatus(t *testing.T, repo *fakeVideoRepo, id string, want models.Status) *models.Video {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v, err := repo.Find(context.Background(), id)
		if err == nil && v.Status == want {
			return v
		}
		time.Sleep(5 * time.Millisecond)
	}
	v, _ := repo.Find(context.Background(), id)
	t.Fatalf("video %s never reached status %q, last seen: %+v", id, want, v)
	return nil
}

func TestSubmitProcessesVideo(t *testing.T) {
	env := newTestEnv(t, nil)

	v, err := env.service.Submit(context.Background(), SubmitRequest{
		URL:               testURL,
		PreferredLanguage: "en",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.YouTubeID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected youtube ID %q", v.YouTubeID)
	}

	done := waitForStatus(t, env.videos, v.ID, models.StatusCompleted)
	if done.ErrorMessage != "" {
		t.Errorf("completed video must not carry an error, got %q", done.ErrorMessage)
	}

	tr, err := env.transcripts.FindByVideoID(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("expected stored transcript: %v", err)
	}
	if tr.Content != "hello and welcome to the show" {
		t.Errorf("unexpected transcript content %q", tr.Content)
	}
	if tr.Enhanced == "" || tr.Enhanced == tr.Content {
		t.Errorf("expected enhanced rendering, got %q", tr.Enhanced)
	}
	if tr.Summary != "a concise summary" {
		t.Errorf("expected summary, got %q", tr.Summary)
	}
	if tr.WordCount != 6 {
		t.Errorf("expected 6 words, got %d", tr.WordCount)
	}
}

func TestSubmitRejectsInvalidURL(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.service.Submit(context.Background(), SubmitRequest{URL: "https://vimeo.com/123"})
	if !errors.IsInvalidInput(err) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	env := newTestEnv(t, nil)

	first, err := env.service.Submit(context.Background(), SubmitRequest{URL: testURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	existing, err := env.service.Submit(context.Background(), SubmitRequest{URL: testURL})
	if !errors.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if existing == nil || existing.ID != first.ID {
		t.Error("expected the existing record alongside the conflict")
	}
}

func TestProcessFailureKeepsPriorTranscript(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		e.fetcher.err = transcript.ErrNoTranscript
	})

	completed := &models.Video{
		ID:        "vid-1",
		YouTubeID: "dQw4w9WgXcQ",
		URL:       testURL,
		Status:    models.StatusCompleted,
	}
	env.videos.seed(completed)
	env.transcripts.Upsert(context.Background(), &models.Transcript{
		VideoID: "vid-1",
		Content: "the original transcript",
	})

	if _, err := env.service.Process(context.Background(), "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed := waitForStatus(t, env.videos, "vid-1", models.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Error("failed video must carry an error message")
	}

	tr, err := env.transcripts.FindByVideoID(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("prior transcript must survive a failed run: %v", err)
	}
	if tr.Content != "the original transcript" {
		t.Errorf("failed run clobbered the transcript: %q", tr.Content)
	}
}

func TestProcessConflictWhileProcessing(t *testing.T) {
	env := newTestEnv(t, nil)

	now := time.Now()
	env.videos.seed(&models.Video{
		ID:                  "vid-1",
		YouTubeID:           "dQw4w9WgXcQ",
		Status:              models.StatusProcessing,
		ProcessingStartedAt: &now,
	})

	_, err := env.service.Process(context.Background(), "vid-1")
	if !errors.IsConflict(err) {
		t.Errorf("expected conflict for an active run, got %v", err)
	}
}

func TestProcessQueueFull(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		cfg.Workers = 0
		cfg.QueueSize = 0
	})

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusPending})

	_, err := env.service.Process(context.Background(), "vid-1")
	var appErr *errors.AppError
	if !errors.As(err, &appErr) || appErr.Code != 503 {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestPipelineSkipsWhenStatusChanged(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		e.videos.denyCAS = true
	})

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusPending})

	if _, err := env.service.Process(context.Background(), "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The guard rejects the transition, so the video must keep its state
	// and no transcript may appear.
	time.Sleep(100 * time.Millisecond)
	v, _ := env.videos.Find(context.Background(), "vid-1")
	if v.Status != models.StatusPending {
		t.Errorf("expected status unchanged, got %q", v.Status)
	}
	if _, err := env.transcripts.FindByVideoID(context.Background(), "vid-1"); !errors.IsNotFound(err) {
		t.Error("expected no transcript after a skipped run")
	}
}

func TestReprocessOverwritesTranscript(t *testing.T) {
	env := newTestEnv(t, nil)

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusCompleted})
	env.transcripts.Upsert(context.Background(), &models.Transcript{
		VideoID: "vid-1",
		Content: "stale content",
		Summary: "stale summary",
	})

	if _, err := env.service.Process(context.Background(), "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitForStatus(t, env.videos, "vid-1", models.StatusCompleted)

	deadline := time.Now().Add(2 * time.Second)
	for {
		tr, err := env.transcripts.FindByVideoID(context.Background(), "vid-1")
		if err == nil && tr.Content == "hello and welcome to the show" {
			if tr.Summary != "a concise summary" {
				t.Errorf("expected fresh summary, got %q", tr.Summary)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("transcript never replaced, last: %+v", tr)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGenerateSummary(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		e.summarizer.summary = "the new summary"
	})

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusCompleted})
	env.transcripts.Upsert(context.Background(), &models.Transcript{
		VideoID: "vid-1",
		Content: "stored transcript text",
		Summary: "the old summary",
	})

	v, tr, err := env.service.GenerateSummary(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != models.StatusCompleted {
		t.Errorf("summary generation must not change status, got %q", v.Status)
	}
	if tr.Summary != "the new summary" {
		t.Errorf("expected overwritten summary, got %q", tr.Summary)
	}
	if tr.Content != "stored transcript text" {
		t.Errorf("summary generation must not touch content, got %q", tr.Content)
	}

	stored, _ := env.transcripts.FindByVideoID(context.Background(), "vid-1")
	if stored.Summary != "the new summary" {
		t.Errorf("expected persisted summary, got %q", stored.Summary)
	}
}

func TestGenerateSummaryGuards(t *testing.T) {
	t.Run("video not completed", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusPending})

		_, _, err := env.service.GenerateSummary(context.Background(), "vid-1")
		if !errors.IsInvalidInput(err) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("no stored transcript", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusCompleted})

		_, _, err := env.service.GenerateSummary(context.Background(), "vid-1")
		if !errors.IsInvalidInput(err) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("backend unavailable", func(t *testing.T) {
		env := newTestEnv(t, func(e *testEnv, cfg *Config) {
			e.summarizer.err = pkgerrors.Wrap(summarize.ErrBackendUnavailable, "connection refused")
		})
		env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusCompleted})
		env.transcripts.Upsert(context.Background(), &models.Transcript{VideoID: "vid-1", Content: "text"})

		_, _, err := env.service.GenerateSummary(context.Background(), "vid-1")
		var appErr *errors.AppError
		if !errors.As(err, &appErr) || appErr.Code != 503 {
			t.Errorf("expected unavailable error, got %v", err)
		}
	})
}

func TestSummarizeOnProcessDisabled(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		cfg.SummarizeOnProcess = false
	})

	v, err := env.service.Submit(context.Background(), SubmitRequest{URL: testURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitForStatus(t, env.videos, v.ID, models.StatusCompleted)

	tr, err := env.transcripts.FindByVideoID(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("expected stored transcript: %v", err)
	}
	if tr.Summary != "" {
		t.Errorf("expected no summary when disabled, got %q", tr.Summary)
	}
	if got := env.summarizer.callCount(); got != 0 {
		t.Errorf("summarizer must not be called, got %d calls", got)
	}
}

func TestGetAndDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusPending})

	v, tr, err := env.service.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr != nil {
		t.Error("expected nil transcript before processing")
	}
	if v.ID != "vid-1" {
		t.Errorf("unexpected video %+v", v)
	}

	if err := env.service.Delete(context.Background(), "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := env.service.Get(context.Background(), "vid-1"); !errors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	env.videos.seed(&models.Video{ID: "a", YouTubeID: "aaaaaaaaaaa", Status: models.StatusPending})
	env.videos.seed(&models.Video{ID: "b", YouTubeID: "bbbbbbbbbbb", Status: models.StatusFailed})

	all, err := env.service.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 videos, got %d", len(all))
	}

	failed, err := env.service.List(context.Background(), models.StatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "b" {
		t.Errorf("unexpected filtered result: %+v", failed)
	}

	if _, err := env.service.List(context.Background(), "bogus"); !errors.IsInvalidInput(err) {
		t.Errorf("expected invalid input for bad filter, got %v", err)
	}
}

func TestCompletedWriteSurvivesPipelineTimeout(t *testing.T) {
	// The terminal write must not ride the pipeline context: if the
	// timeout expires after the transcript is saved, the video still has
	// to leave processing.
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		cfg.ProcessTimeout = time.Nanosecond
	})

	env.videos.seed(&models.Video{ID: "vid-1", YouTubeID: "dQw4w9WgXcQ", Status: models.StatusPending})

	if _, err := env.service.Process(context.Background(), "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := waitForStatus(t, env.videos, "vid-1", models.StatusCompleted)
	if done.ErrorMessage != "" {
		t.Errorf("completed video must not carry an error, got %q", done.ErrorMessage)
	}
	if _, err := env.transcripts.FindByVideoID(context.Background(), "vid-1"); err != nil {
		t.Errorf("expected stored transcript alongside the completed state: %v", err)
	}
}

func TestJanitorFailsStaleVideos(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv, cfg *Config) {
		cfg.StaleTimeout = 10 * time.Millisecond
		cfg.JanitorInterval = 10 * time.Millisecond
	})

	started := time.Now().Add(-time.Minute)
	env.videos.seed(&models.Video{
		ID:                  "vid-1",
		YouTubeID:           "dQw4w9WgXcQ",
		Status:              models.StatusProcessing,
		ProcessingStartedAt: &started,
	})

	failed := waitForStatus(t, env.videos, "vid-1", models.StatusFailed)
	if failed.ErrorMessage != "processing timed out" {
		t.Errorf("unexpected error message %q", failed.ErrorMessage)
	}
}
