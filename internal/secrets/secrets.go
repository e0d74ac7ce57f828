// Package secrets resolves database passwords, the Sentry DSN and
// notification URLs from environment references or mounted secret files
// (Docker/Kubernetes secrets). Secret values are never logged.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tphakala/premigrate/internal/errors"
)

// maxSecretFileSize limits secret file reads. Secrets are passwords and
// tokens, not documents.
const maxSecretFileSize = 64 * 1024

// ExpandString resolves ${VAR} and ${VAR:-default} references in s.
// A reference to an unset variable without a default is an error. Strings
// without a ${ reference are returned unchanged.
func ExpandString(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", errors.Newf("missing required environment variable(s): %s", strings.Join(missing, ", ")).
			Category(errors.CategoryConfiguration).
			Build()
	}
	return expanded, nil
}

// ReadFile reads a secret from a file. Trailing newlines are trimmed.
// Files that other users can read are rejected.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", errors.Newf("secret file path is empty").Category(errors.CategoryConfiguration).Build()
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", cleanPath).
			Build()
	}

	switch {
	case !info.Mode().IsRegular():
		return "", fileError("secret path is not a regular file", cleanPath)
	case info.Size() > maxSecretFileSize:
		return "", fileError("secret file is too large", cleanPath)
	case info.Mode().Perm()&0o007 != 0:
		return "", fileError("secret file is readable by other users", cleanPath)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.New(err).Category(errors.CategoryFileIO).Context("path", cleanPath).Build()
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fileError("secret file is empty", cleanPath)
	}
	return secret, nil
}

func fileError(msg, path string) error {
	return errors.Newf("%s: %s", msg, path).
		Category(errors.CategoryConfiguration).
		Context("path", path).
		Build()
}

// Resolve returns the secret from filePath when one is given, otherwise
// value with environment references expanded.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return ExpandString(value)
}
