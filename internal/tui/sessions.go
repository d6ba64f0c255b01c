package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

const (
	sessionTitleWidth = 34
	sessionIDWidth    = 8
)

// FormatSessions renders sessions as an aligned, numbered table; the active
// one is marked with '*'. Titles are padded by display width so CJK and
// emoji titles line up.
func FormatSessions(sessions []chat.Session, activeID string) string {
	if len(sessions) == 0 {
		return "No chat history yet."
	}

	var sb strings.Builder
	for i, s := range sessions {
		mark := " "
		if s.ID == activeID {
			mark = "*"
		}
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		title = runewidth.FillRight(runewidth.Truncate(title, sessionTitleWidth, "…"), sessionTitleWidth)

		fmt.Fprintf(&sb, "%s %2d. %s  %-*s  %3d msgs  %s\n",
			mark, i+1, title, sessionIDWidth, ShortID(s.ID), len(s.Messages), formatCreated(s.CreatedAt))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ShortID is the id tail shown in listings. Time-ordered ids share their
// leading characters, so the random tail is what tells them apart.
func ShortID(id string) string {
	if len(id) <= sessionIDWidth {
		return id
	}
	return id[len(id)-sessionIDWidth:]
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
