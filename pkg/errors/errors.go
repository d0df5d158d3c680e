package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents configuration errors raised before any network access
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeNetwork represents fetch/transport errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting responses from the source site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeMalformedAttribute represents an element that is present but lacks a required attribute
	ErrorTypeMalformedAttribute ErrorType = "malformed_attribute"
	// ErrorTypeExport represents dataset export errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// ScrapeError represents an error raised while scraping a region
type ScrapeError struct {
	Type    ErrorType
	Region  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Region, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Region, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error aborts the whole run rather than one region
func (e *ScrapeError) IsFatal() bool {
	return e.Type == ErrorTypeConfiguration
}

// Is reports whether err is, or wraps, a ScrapeError of the given type
func Is(err error, errType ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// New creates a new ScrapeError
func New(errType ErrorType, region, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Region:  region,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewNetwork creates a new network error
func NewNetwork(region, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, region, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(region, retryAfter string) *ScrapeError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, region, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(region, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, region, message, err)
}

// NewMalformedAttribute creates an error for an element missing a required attribute
func NewMalformedAttribute(region, element, attr string) *ScrapeError {
	message := fmt.Sprintf("%s present without required %q attribute", element, attr)
	return New(ErrorTypeMalformedAttribute, region, message, nil)
}

// NewExport creates a new export error
func NewExport(region, message string, err error) *ScrapeError {
	return New(ErrorTypeExport, region, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(region, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, region, message, err)
}

// NewCache creates a new cache error
func NewCache(region, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, region, message, err)
}
