package storage

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidProfile = errors.New("invalid profile name")
	ErrClosed         = errors.New("store handle closed")
)

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidateProfile keeps profile names safe to embed in file names and redis keys.
func ValidateProfile(profile string) error {
	if !profilePattern.MatchString(profile) {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	return nil
}

type changeMessage struct {
	Profile string   `json:"profile"`
	Origin  string   `json:"origin"`
	Keys    []string `json:"keys"`
}
