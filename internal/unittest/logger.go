// Package unittest provides fixtures and assertion helpers shared by the
// package tests. It is intended for testing purposes only.
package unittest

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a zerolog.Logger configured for testing.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(os.Stdout).Level(zerolog.DebugLevel).With().Str("test", t.Name()).Logger()
}
