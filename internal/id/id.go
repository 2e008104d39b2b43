// Package id generates prefixed identifiers for records this service owns.
// Provider records keep the integer ids assigned by the provider.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PrefixRun marks scrape run ids.
const PrefixRun = "run"

// Generate creates a prefixed NanoID, e.g. "run-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewRunID returns an id for a scrape run.
func NewRunID() (string, error) {
	return Generate(PrefixRun)
}
