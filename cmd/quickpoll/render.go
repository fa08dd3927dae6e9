// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/youjianchi/quickPoll/models"
)

const barWidth = 20

func renderPoll(w io.Writer, poll models.Poll, now time.Time) {
	fmt.Fprintf(w, "Poll #%d: %s\n", poll.ID, poll.Question)
	if !poll.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  created %s\n", humanize.RelTime(poll.CreatedAt, now, "ago", "from now"))
	}

	var total int64
	width := 0
	for _, opt := range poll.Options {
		total += opt.Votes
		if n := utf8.RuneCountInString(opt.Text); n > width {
			width = n
		}
	}

	for _, opt := range poll.Options {
		share := 0.0
		if total > 0 {
			share = float64(opt.Votes) / float64(total)
		}
		filled := int(share*barWidth + 0.5)
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(opt.Text))
		fmt.Fprintf(w, "  [%d] %s%s  %s%s  %s (%.0f%%)\n",
			opt.ID, opt.Text, pad,
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled),
			countVotes(opt.Votes), share*100)
	}
	fmt.Fprintf(w, "  %s total\n", countVotes(total))
}

func countVotes(n int64) string {
	return humanize.Comma(n) + " " + english.PluralWord(int(n), "vote", "")
}

// samePoll reports whether re-rendering b would show nothing new
func samePoll(a, b models.Poll) bool {
	if a.ID != b.ID || a.Question != b.Question || len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if a.Options[i].ID != b.Options[i].ID || a.Options[i].Votes != b.Options[i].Votes ||
			a.Options[i].Text != b.Options[i].Text {
			return false
		}
	}
	return true
}
