package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a distribution name for safety.
// Distribution names end up in filesystem lookups, so the rules reject
// anything that could escape a site-packages directory:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// pythonPackageNameRegex matches valid Python distribution names (PEP 508).
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePythonPackageName validates a Python distribution name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %q", name)
	}

	return nil
}

// ValidateExtraName validates a requested extra name. Extras follow the same
// grammar as distribution names.
func ValidateExtraName(extra string) error {
	if extra == "" {
		return New(ErrCodeInvalidInput, "extra name cannot be empty")
	}
	if !pythonPackageNameRegex.MatchString(extra) {
		return New(ErrCodeInvalidInput, "invalid extra name: %q", extra)
	}
	return nil
}
