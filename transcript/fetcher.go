// Package transcript fetches video transcripts from an external
// transcript-retrieval service.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Typed failures callers can branch on.
var (
	// ErrNoTranscript means no transcript exists for the video in any language.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrLanguageUnavailable means the preferred language has no transcript
	// and fallback was disabled.
	ErrLanguageUnavailable = errors.New("transcript not available in preferred language")
	// ErrUpstream covers transport failures and rate limiting at the
	// transcript service.
	ErrUpstream = errors.New("transcript service error")
)

type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Result is a fetched transcript: segments plus resolved metadata. The
// resolved language may differ from the preferred one when the service
// fell back to the best available track.
type Result struct {
	VideoID     string    `json:"video_id"`
	Language    string    `json:"language"`
	IsGenerated bool      `json:"is_generated"`
	Segments    []Segment `json:"segments"`
}

// Text joins the segment texts into a single plain-text transcript.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

type Fetcher interface {
	// Fetch retrieves the transcript for a video. language is a preferred
	// language hint; empty means auto-detect.
	Fetch(ctx context.Context, videoID, language string) (*Result, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// FallbackToAny allows resolving to the best available language when
	// the preferred one has no transcript.
	FallbackToAny bool
}

type Client struct {
	config Config
	http   *http.Client
	logger *logrus.Logger
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logrus.StandardLogger(),
	}
}

func (c *Client) Fetch(ctx context.Context, videoID, language string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/transcripts/%s", strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(videoID))

	query := url.Values{}
	if language != "" && language != "auto" {
		query.Set("lang", language)
	}
	if c.config.FallbackToAny {
		query.Set("fallback", "1")
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building transcript request")
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstream, "fetching transcript: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrNoTranscript, "video %s", videoID)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, errors.Wrapf(ErrLanguageUnavailable, "video %s, language %s", videoID, language)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrap(ErrUpstream, "rate limited by transcript service")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(ErrUpstream, "unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(ErrUpstream, "decoding transcript response")
	}

	if len(result.Segments) == 0 {
		return nil, errors.Wrapf(ErrNoTranscript, "video %s returned empty transcript", videoID)
	}
	if result.VideoID == "" {
		result.VideoID = videoID
	}

	// The service resolves the final language; enforce the preference here
	// when fallback is disabled.
	if !c.config.FallbackToAny && language != "" && language != "auto" && result.Language != language {
		return nil, errors.Wrapf(ErrLanguageUnavailable, "resolved %s, wanted %s", result.Language, language)
	}

	c.logger.WithFields(logrus.Fields{
		"video_id":     videoID,
		"language":     result.Language,
		"is_generated": result.IsGenerated,
		"segments":     len(result.Segments),
	}).Debug("Fetched transcript")

	return &result, nil
}
