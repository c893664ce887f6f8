package loginattempts

import (
	"fmt"
	"strings"
)

// Policy decides how the fingerprint check is ordered against the main flow.
type Policy int

const (
	// PolicyConcurrent runs the check alongside the main flow without joining it.
	// A mismatch forces a logout whenever it is detected, possibly after the main
	// flow has already reported success.
	PolicyConcurrent Policy = iota

	// PolicyBlocking runs the check first; a mismatch aborts the main flow.
	PolicyBlocking
)

func (p Policy) String() string {
	switch p {
	case PolicyConcurrent:
		return "concurrent"
	case PolicyBlocking:
		return "blocking"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "concurrent":
		return PolicyConcurrent, nil
	case "blocking":
		return PolicyBlocking, nil
	}
	return PolicyConcurrent, fmt.Errorf("unknown fingerprint policy %q", s)
}
