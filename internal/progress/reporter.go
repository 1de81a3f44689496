// Package progress renders a single overwritten status line for long
// conversions. Rendering is display-only: truncation here never touches the
// persisted records.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oukeidos/tmxline/internal/jsonl"
	"github.com/rivo/uniseg"
)

// previewGraphemes caps the per-side preview length in grapheme clusters.
const previewGraphemes = 30

// minInterval throttles repaints to roughly ten per second.
const minInterval = 100 * time.Millisecond

type Options struct {
	// Enabled gates all output; callers pass terminal detection here.
	Enabled bool
	// Silent drops the latest-record preview but keeps the counters.
	Silent bool
	// TotalBytes enables a percentage when the input size is known.
	TotalBytes int64
}

type Reporter struct {
	w       io.Writer
	opts    Options
	last    time.Time
	lastLen int
	now     func() time.Time
}

func NewReporter(w io.Writer, opts Options) *Reporter {
	return &Reporter{w: w, opts: opts, now: time.Now}
}

// Update repaints the status line if enough time has passed since the last
// repaint. High-throughput runs therefore skip most updates.
func (r *Reporter) Update(records, bytesRead int64, latest jsonl.Record) {
	if !r.opts.Enabled {
		return
	}
	now := r.now()
	if !r.last.IsZero() && now.Sub(r.last) < minInterval {
		return
	}
	r.last = now
	r.paint(records, bytesRead, latest, false)
}

// Final repaints unconditionally and terminates the line. It must never be
// throttled away.
func (r *Reporter) Final(records, bytesRead int64) {
	if !r.opts.Enabled {
		return
	}
	r.paint(records, bytesRead, jsonl.Record{}, true)
	fmt.Fprintln(r.w)
}

func (r *Reporter) paint(records, bytesRead int64, latest jsonl.Record, final bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Records: %d", records)
	if r.opts.TotalBytes > 0 && bytesRead > 0 {
		pct := float64(bytesRead) / float64(r.opts.TotalBytes) * 100
		if pct > 100 {
			pct = 100
		}
		fmt.Fprintf(&b, " (%.1f%%)", pct)
	}
	if !final && !r.opts.Silent && latest.Source != "" {
		fmt.Fprintf(&b, " | %s -> %s",
			Truncate(latest.Source, previewGraphemes),
			Truncate(latest.Target, previewGraphemes))
	}

	line := b.String()
	pad := r.lastLen - len(line)
	r.lastLen = len(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprint(r.w, "\r"+line)
}

// Truncate cuts s to max grapheme clusters and appends an ellipsis when
// anything was removed. Grapheme counting keeps combined characters and
// emoji intact.
func Truncate(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		if n == max {
			break
		}
		b.WriteString(g.Str())
		n++
	}
	return b.String() + "…"
}
