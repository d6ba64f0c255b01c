package provider

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyAnswer is returned when a stream finishes without any text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// Complete runs req on p and collects the whole stream into one answer.
func Complete(ctx context.Context, p Provider, req *ChatRequest) (string, *Usage, error) {
	ch, err := p.Chat(ctx, req)
	if err != nil {
		return "", nil, errors.Wrapf(err, "%s chat", p.Name())
	}

	var (
		sb    strings.Builder
		usage *Usage
		fail  error
	)
	// Drain fully so the adapter goroutine can exit.
	for ev := range ch {
		switch ev.Type {
		case EventTextDelta:
			sb.WriteString(ev.TextDelta)
		case EventDone:
			usage = ev.Usage
		case EventError:
			if fail == nil {
				fail = ev.Error
			}
		}
	}
	if fail != nil {
		return "", usage, fail
	}
	if usage == nil {
		usage = &Usage{}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", usage, ErrEmptyAnswer
	}
	return sb.String(), usage, nil
}
