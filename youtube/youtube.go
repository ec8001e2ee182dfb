// Package youtube normalizes YouTube URLs to bare video identifiers.
package youtube

import (
	"regexp"

	"ytdigest/errors"
)

// YouTube IDs are 11 characters of alphanumerics, underscores and hyphens.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

var urlPatterns = []*regexp.Regexp{
	// Standard watch URLs, with or without extra query parameters
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})(?:[&#].*)?$`),
	// Short youtu.be URLs
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})(?:[?#].*)?$`),
	// Shorts
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})(?:[?#].*)?$`),
	// Embedded player
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})(?:[?#].*)?$`),
	// Live streams
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/live/([a-zA-Z0-9_-]{11})(?:[?#].*)?$`),
}

// ExtractVideoID extracts the bare video identifier from any of the standard
// YouTube URL forms (watch, youtu.be, shorts, embed, live, with or without
// timestamp or playlist query parameters).
func ExtractVideoID(url string) (string, error) {
	const op = "youtube.ExtractVideoID"

	if url == "" {
		return "", errors.InvalidInput(op, nil, "URL is required")
	}

	for _, pattern := range urlPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1], nil
		}
	}

	return "", errors.InvalidInput(op, nil, "Invalid YouTube URL or video ID")
}

// IsValidVideoID reports whether s is a properly formatted YouTube video ID.
func IsValidVideoID(s string) bool {
	return idPattern.MatchString(s)
}
