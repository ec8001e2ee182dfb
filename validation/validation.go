package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ytdigest/config"
	"ytdigest/errors"
	"ytdigest/youtube"
)

type Validator struct {
	config *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ValidateURL performs URL validation and verifies a video identifier can
// be extracted.
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	if urlStr == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidInput(op, err, "Invalid URL format")
	}

	// Protocol validation; a bare host-relative URL parses with an empty
	// scheme, which the ID patterns tolerate, so only reject the unexpected.
	if parsedURL.Scheme != "" && parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	host := parsedURL.Hostname()
	if host != "" && !strings.HasSuffix(host, "youtube.com") && host != "youtu.be" {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	if _, err := youtube.ExtractVideoID(urlStr); err != nil {
		return err
	}

	return nil
}

// ValidateLanguage checks a preferred-language hint. Empty and "auto" both
// mean auto-detect.
func (v *Validator) ValidateLanguage(lang string) error {
	const op = "Validator.ValidateLanguage"

	if lang == "" || lang == "auto" {
		return nil
	}
	if len(lang) < 2 || len(lang) > 10 {
		return errors.InvalidInput(op, nil, "Invalid language code")
	}
	for _, r := range lang {
		if (r < 'a' || r > 'z') && r != '-' {
			return errors.InvalidInput(op, nil, "Invalid language code")
		}
	}
	return nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	// Method validation
	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	// Content type validation
	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	// Content length validation
	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
