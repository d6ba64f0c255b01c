package chat

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type options struct {
	log    zerolog.Logger
	clock  clockwork.Clock
	newID  func() string
	buffer PromptBuffer
}

// Option configures a Manager or one of its parts.
type Option func(*options)

// WithLogger sets the logger used for persistence failures and rejected turns.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the clock that stamps Session.CreatedAt.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithPromptBuffer attaches the input the user is editing; it is cleared as
// soon as a turn is accepted.
func WithPromptBuffer(b PromptBuffer) Option {
	return func(o *options) { o.buffer = b }
}

func buildOptions(opts []Option) options {
	o := options{
		log:   zerolog.Nop(),
		clock: clockwork.NewRealClock(),
		newID: newSessionID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newSessionID returns a time-ordered UUIDv7, falling back to the
// nanosecond clock if the random source fails.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}
