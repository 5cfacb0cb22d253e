// Package redact provides utilities for redacting sensitive information from
// strings before they are logged. This keeps credentials, verification PINs,
// contact phone numbers and connection details out of the log stream.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedPINPlaceholder        = "[REDACTED_PIN]"
	RedactedPhonePlaceholder      = "[REDACTED_PHONE]"
)

// Precompiled regex patterns
var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`)

	// JWT token pattern - matches the standard three-part base64url-encoded format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Verification PINs as they appear in handshake errors ("pin 123456")
	pinRegex = regexp.MustCompile(`(?i)\b(pin|code)[=:\s]+['"]?\d{4,10}\b`)

	// Phone numbers (emergency contacts)
	phoneRegex = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)

	// Email addresses
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Secrets and keys in key=value form
	secretRegex = regexp.MustCompile(
		`(?i)(secret|token|api[_-]?key|password|passwd)(['"\s:=]+)[^'"&\s]{6,}`,
	)

	patternPlaceholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder},
		{jwtTokenRegex, "[REDACTED_JWT]"},
		{secretRegex, RedactedCredentialPlaceholder},
		{pinRegex, RedactedPINPlaceholder},
		{emailRegex, "[REDACTED_EMAIL]"},
		{phoneRegex, RedactedPhonePlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patternPlaceholders {
		result = p.pattern.ReplaceAllString(result, p.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
