package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	barWidth   = 30
	labelWidth = 32
)

// Bar is a single-line terminal progress bar with the current item's label.
type Bar struct {
	out       io.Writer
	total     int
	current   int
	label     string
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a progress bar writing to stdout
func New(total int) *Bar {
	return NewWithWriter(total, os.Stdout)
}

// NewWithWriter creates a progress bar writing to out
func NewWithWriter(total int, out io.Writer) *Bar {
	now := time.Now()
	return &Bar{
		out:       out,
		total:     total,
		startTime: now,
		lastPrint: now,
	}
}

// Increment advances the bar by one and shows label as the last finished item.
func (b *Bar) Increment(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.label = label

	// Update display every 500ms or when complete
	now := time.Now()
	if now.Sub(b.lastPrint) > 500*time.Millisecond || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

// Finish marks the progress as complete
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.current = b.total
		b.label = ""
		b.render()
		fmt.Fprintln(b.out)
		b.done = true
	}
}

// render displays the progress bar
func (b *Bar) render() {
	if b.done || b.total <= 0 {
		return
	}

	percentage := float64(b.current) / float64(b.total) * 100
	elapsed := time.Since(b.startTime)

	var eta time.Duration
	if b.current > 0 {
		avgTime := elapsed / time.Duration(b.current)
		eta = avgTime * time.Duration(b.total-b.current)
	}

	filled := barWidth * b.current / b.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.out, "\r[%s] %d/%d (%.1f%%) - Elapsed: %s - ETA: %s %-*s",
		bar,
		b.current,
		b.total,
		percentage,
		formatDuration(elapsed),
		formatDuration(eta),
		labelWidth,
		truncate(b.label, labelWidth),
	)
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
