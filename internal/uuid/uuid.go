// Package uuid wraps id generation behind an interface so tests can
// produce stable participant and status ids.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique id strings
type Generator interface {
	New() string
}

// GoogleUUIDGenerator generates random v4 UUIDs
type GoogleUUIDGenerator struct{}

// New implements Generator
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// SequenceGenerator hands out prefix-1, prefix-2, ... for deterministic
// test fixtures. Not safe for concurrent use.
type SequenceGenerator struct {
	prefix string
	next   int
}

// NewSequenceGenerator creates a SequenceGenerator with the given prefix
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// New implements Generator
func (g *SequenceGenerator) New() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
