package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateAbsoluteURL checks that value parses as an absolute http(s) URL.
func ValidateAbsoluteURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be an absolute http or https URL",
		}
	}
	return nil
}

// Validate checks the configuration for values that would make the device-link
// flow or the identity probes misbehave.
func (c PlexlinkConfig) Validate() error {
	var errs ValidationErrors

	if err := ValidateAbsoluteURL("identityService.baseURL", c.IdentityService.BaseURL); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidateAbsoluteURL("identityService.authAppURL", c.IdentityService.AuthAppURL); err != nil {
		errs = append(errs, err.(ValidationError))
	}

	if c.Polling.Interval <= 0 {
		errs.Add("polling.interval", "must be positive", c.Polling.Interval)
	}
	if c.Polling.Timeout <= 0 {
		errs.Add("polling.timeout", "must be positive", c.Polling.Timeout)
	}
	if c.Polling.Interval > 0 && c.Polling.Timeout > 0 && c.Polling.Interval > c.Polling.Timeout {
		errs.Add("polling.interval", "must not exceed polling.timeout", c.Polling.Interval)
	}
	if c.Polling.TransientRetries < 0 {
		errs.Add("polling.transientRetries", "must not be negative", c.Polling.TransientRetries)
	}

	if c.HTTP.Timeout < 0 {
		errs.Add("http.timeout", "must not be negative", c.HTTP.Timeout)
	}

	if strings.TrimSpace(c.Storage.SettingsFile) == "" {
		errs.Add("storage.settingsFile", "is required")
	}
	if c.Storage.KeyringEnabled && strings.TrimSpace(c.Storage.KeyringService) == "" {
		errs.Add("storage.keyringService", "is required when the keyring is enabled")
	}

	if c.Log.Format != "" {
		if err := ValidateOneOf("log.format", c.Log.Format, []string{"text", "json"}); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	for reason, tmpl := range c.Notifications.Templates {
		if strings.TrimSpace(tmpl) == "" {
			errs.Add("notifications.templates."+reason, "must not be empty")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
