// Package id generates prefixed unique identifiers for domain entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// length is the number of NanoID characters after the prefix.
// 21 characters of the URL-safe alphabet gives UUID-level collision
// resistance in far fewer bytes.
const length = 21

// Generate creates a prefixed unique ID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// The prefix makes IDs self-describing in logs and foreign keys.
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Reserved for initialization paths and tests where entropy exhaustion
// should crash the program.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
