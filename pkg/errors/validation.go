package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// githubNameRegex matches GitHub account and repository names.
var githubNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ParseRepoSlug splits and validates an "owner/name" repository reference.
func ParseRepoSlug(slug string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(slug), "/")
	if !ok || strings.Contains(name, "/") {
		return "", "", New(ErrCodeInvalidInput, "repository must be owner/name, got %q", slug)
	}
	for _, part := range []string{owner, name} {
		if len(part) > 100 || !githubNameRegex.MatchString(part) {
			return "", "", New(ErrCodeInvalidInput, "invalid repository name part: %q", part)
		}
	}
	return owner, name, nil
}

// boltSchemes are the URI schemes the Neo4j driver accepts.
var boltSchemes = map[string]bool{
	"neo4j": true, "neo4j+s": true, "neo4j+ssc": true,
	"bolt": true, "bolt+s": true, "bolt+ssc": true,
}

// ValidateDatabaseURI checks a Neo4j connection URI.
func ValidateDatabaseURI(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidConfig, "database URI is required (set NEO4J_URI or [neo4j].uri)")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid database URI")
	}
	if !boltSchemes[u.Scheme] {
		return New(ErrCodeInvalidConfig, "unsupported database URI scheme %q (must be neo4j or bolt, optionally +s or +ssc)", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "database URI has no host: %q", raw)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateFilterPattern checks that pattern compiles as a regular
// expression. The empty pattern is valid and matches everything.
func ValidateFilterPattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid filter pattern %q", pattern)
	}
	return nil
}

// ValidateFilePrefix checks a prefix used to name output files. It must be
// a plain name without path separators or control characters.
func ValidateFilePrefix(prefix string) error {
	if len(prefix) > 100 {
		return New(ErrCodeInvalidInput, "file prefix too long (max 100 characters)")
	}
	for _, r := range prefix {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "file prefix contains invalid control characters")
		}
	}
	if strings.ContainsAny(prefix, `/\`) || strings.Contains(prefix, "..") {
		return New(ErrCodeInvalidInput, "file prefix cannot contain path separators: %q", prefix)
	}
	return nil
}
