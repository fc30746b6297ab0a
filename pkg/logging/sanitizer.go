package logging

import (
	"regexp"
)

const (
	// MaxStatementLogLength is the maximum length of a SQL statement to log.
	MaxStatementLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// Matches password values in connection strings:
	// password=xxx, pwd=xxx, pass=xxx (until the next delimiter).
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials in URL-style connection strings.
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from a connection string.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might echo connection strings.
// Use this before logging any error raised by a database driver.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeConnectionString(err.Error())
}

// TruncateStatement shortens a SQL statement for logging.
func TruncateStatement(sql string) string {
	if len(sql) <= MaxStatementLogLength {
		return sql
	}
	return sql[:MaxStatementLogLength] + "..."
}
