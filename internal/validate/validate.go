// Package validate holds the input checks that guard the catalog. Everything
// here is pure: no logging, no state. Callers decide whether a failure is a
// skip-and-continue (bulk load) or a client error (interactive write).
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MaxNameLength caps service names so a hostile entry cannot blow up log
// lines or the persisted file.
const MaxNameLength = 256

// serviceName whitelists word characters, whitespace, and the punctuation a
// human-readable service label plausibly needs. Anything else is rejected
// outright rather than rewritten, so shell metacharacters and control bytes
// never reach storage or a log line.
var serviceName = regexp.MustCompile(`^[\w\s.\-()\[\]/@#]+$`)

var (
	ErrEmptyName    = errors.New("service name is empty")
	ErrNameTooLong  = fmt.Errorf("service name exceeds %d characters", MaxNameLength)
	ErrNameCharset  = errors.New("service name contains disallowed characters")
	ErrPortRange    = errors.New("port must be between 1 and 65535")
	ErrPortNotDigit = errors.New("port is not an integer")
)

// ServiceName reports whether raw is acceptable as a catalog service name.
func ServiceName(raw string) error {
	if raw == "" {
		return ErrEmptyName
	}
	if len(raw) > MaxNameLength {
		return ErrNameTooLong
	}
	if !serviceName.MatchString(raw) {
		return ErrNameCharset
	}
	return nil
}

// Port reports whether n is a usable port number.
func Port(n int) error {
	if n < 1 || n > 65535 {
		return ErrPortRange
	}
	return nil
}

// PortString parses raw as a port number. It insists on a plain base-10
// integer, so "3.5", "80x", and "" all fail before the range check runs.
func PortString(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrPortNotDigit
	}
	if err := Port(n); err != nil {
		return 0, err
	}
	return n, nil
}
