// Package logger builds the process-wide zerolog logger.
//
// Call Init once from main with values taken from the loaded configuration;
// packages that are not handed a logger explicitly may use Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options selects level, format and the static fields stamped on every entry.
type Options struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Empty or unknown names fall back to info.
	Level string
	// Pretty switches to the coloured console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer

	Service string
	Env     string
}

var (
	mu       sync.RWMutex
	instance *zerolog.Logger
)

// New returns a logger configured by opts without touching the singleton.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Env != "" {
		ctx = ctx.Str("env", opts.Env)
	}
	return ctx.Logger()
}

// Init builds the singleton on first use and returns it. Later calls return
// the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opts)
		instance = &l
	}
	return *instance
}

// Get returns the singleton. Before Init it returns a disabled logger so
// early callers never crash.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return zerolog.Nop()
	}
	return *instance
}

// Reset drops the singleton; tests use it to start from a clean state.
func Reset() {
	mu.Lock()
	instance = nil
	mu.Unlock()
}

// ParseLevel maps a level name to a zerolog.Level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
