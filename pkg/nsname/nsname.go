// Package nsname implements NamespaceNaming: pure functions turning a test
// identity into a valid cluster namespace name, plus fixed-name
// validation. No cluster access here — these are pure string functions.
package nsname

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

const (
	prefix      = "testpods-"
	suffixLen   = 5
	suffixAlpha = "abcdefghijklmnopqrstuvwxyz0123456789" // 36 chars
	maxNameLen  = 63
)

// dns1123LabelRe matches a valid Kubernetes DNS-1123 label: lowercase
// alphanumeric and '-', starting and ending alphanumeric.
var dns1123LabelRe = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

var nonAllowedRe = regexp.MustCompile(`[^a-z0-9-]+`)

// ForTestClass builds a per-test-class namespace name:
// "testpods-" + sanitized(className) + "-" + 5-char random suffix, all
// within 63 chars. The base portion is truncated if it would overflow.
func ForTestClass(className string) (string, error) {
	sanitized := sanitize(className)
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("nsname: %w", err)
	}

	// 63 - len(prefix) - len("-") - suffixLen
	maxBase := maxNameLen - len(prefix) - 1 - suffixLen
	if maxBase < 0 {
		maxBase = 0
	}
	if len(sanitized) > maxBase {
		sanitized = sanitized[:maxBase]
	}
	sanitized = strings.Trim(sanitized, "-")

	name := prefix + sanitized + "-" + suffix
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name, nil
}

// Fixed validates name against the namespace regex and length limit,
// returning it unchanged on success.
func Fixed(name string) (string, error) {
	if len(name) == 0 || len(name) > maxNameLen {
		return "", fmt.Errorf("nsname: fixed name %q: length must be 1-%d", name, maxNameLen)
	}
	if !dns1123LabelRe.MatchString(name) {
		return "", fmt.Errorf("nsname: fixed name %q: must be lowercase alphanumeric and '-', start/end alphanumeric", name)
	}
	return name, nil
}

// sanitize lowercases className and strips disallowed characters.
func sanitize(className string) string {
	lower := strings.ToLower(className)
	return nonAllowedRe.ReplaceAllString(lower, "")
}

// randomSuffix draws a suffixLen-character string from a cryptographic
// source over the 36-character [a-z0-9] alphabet.
func randomSuffix() (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	out := make([]byte, suffixLen)
	for i, b := range buf {
		out[i] = suffixAlpha[int(b)%len(suffixAlpha)]
	}
	return string(out), nil
}
