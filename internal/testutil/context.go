package testutil

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Context returns a background context carrying a console logger.
func Context() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}
