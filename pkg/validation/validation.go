package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// ChannelIDRegex validates bare channel ID format
	ChannelIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// HandleRegex validates "@handle" channel identifiers
	HandleRegex = regexp.MustCompile(`^@[a-zA-Z0-9._-]+$`)
)

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateChannelID validates a channel identifier, either a bare channel ID
// or an "@handle" form.
func ValidateChannelID(channelID string) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("channel ID is required")
	}
	if len(channelID) > 100 {
		return fmt.Errorf("channel ID is too long (max 100 characters)")
	}
	if strings.HasPrefix(channelID, "@") {
		if !HandleRegex.MatchString(channelID) {
			return fmt.Errorf("invalid handle format")
		}
		return nil
	}
	if !ChannelIDRegex.MatchString(channelID) {
		return fmt.Errorf("invalid channel ID format")
	}
	return nil
}

// ValidateSourceName validates a content source display name
func ValidateSourceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("name is too long (max 100 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	return nil
}

// ValidateReturnTo checks whether a return-to route is a safe relative path.
// This is a capability test rather than an error path: callers fall back to
// the default route when it fails.
func ValidateReturnTo(route string) bool {
	if route == "" {
		return false
	}
	if !strings.HasPrefix(route, "/") {
		return false
	}
	// Protocol-relative URLs ("//evil.example") are not routes.
	if strings.HasPrefix(route, "//") {
		return false
	}
	if strings.ContainsAny(route, "\r\n") {
		return false
	}
	return true
}
