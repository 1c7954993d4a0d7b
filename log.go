package peg

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. It defaults to
// writing leveled JSON to stderr; callers (notably cmd/pegc) can
// reassign it from Config.Log before doing any parsing or compiling.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)

// SetLogLevel parses one of "debug"|"info"|"warn"|"error" and applies
// it to Logger, defaulting to info on an unrecognised value.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	Logger = Logger.Level(lvl)
}

// NewSessionID mints a short correlation id. Each Parser mints one and
// attaches it to every trace event it logs, so concurrent parsers
// sharing a log stream stay attributable (spec SPEC_FULL §4.I).
func NewSessionID() string {
	return uuid.NewString()
}

// tracer mirrors the teacher's TracerSpan push/pop stack
// (base_parser.go), but emits structured debug log events instead of
// only building an in-memory breadcrumb string. It is purely
// observational: nothing in the Error Model or control flow reads
// from it.
type tracer struct {
	log   zerolog.Logger
	stack []traceSpan
}

type traceSpan struct {
	name  string
	at    Location
	start time.Time
}

func newTracer(sessionID string) *tracer {
	return &tracer{log: Logger.With().Str("session", sessionID).Logger()}
}

func (t *tracer) enter(name string, at Location) {
	t.stack = append(t.stack, traceSpan{name: name, at: at, start: time.Now()})
	if t.log.GetLevel() <= zerolog.DebugLevel {
		t.log.Debug().
			Str("rule", name).
			Int("depth", len(t.stack)).
			Str("at", at.String()).
			Msg("rule enter")
	}
}

func (t *tracer) exit(ok bool) {
	if len(t.stack) == 0 {
		return
	}
	idx := len(t.stack) - 1
	span := t.stack[idx]
	t.stack = t.stack[:idx]
	if t.log.GetLevel() <= zerolog.DebugLevel {
		t.log.Debug().
			Str("rule", span.name).
			Bool("matched", ok).
			Dur("elapsed", time.Since(span.start)).
			Msg("rule exit")
	}
}

// PrintStackTrace renders the currently open spans, innermost last,
// matching the teacher's base_parser.go PrintStackTrace debugging aid.
func (t *tracer) PrintStackTrace() string {
	var out string
	for i, span := range t.stack {
		if i > 0 {
			out += " > "
		}
		out += span.name
	}
	return out
}
