// Package notify gates outbound scheduled messages. The Deduper decides
// whether a freshly generated text is safe to send for a named job; the
// Registrar installs recurring timers exactly once per job name.
package notify

import (
	"sync"
	"time"
)

const (
	DefaultCooldown            = 10 * time.Minute
	DefaultHistorySize         = 5
	DefaultSimilarityThreshold = 0.8
	DefaultMinSimilarityLen    = 20
)

// Options holds the dedupe knobs. Zero values fall back to the defaults.
type Options struct {
	// Cooldown is the minimum gap between two accepted sends of the same
	// job, regardless of content. Guards against double-fires within one
	// scheduling tick; once-per-day jobs should use the daily marker.
	Cooldown time.Duration
	// HistorySize bounds the per-job FIFO of recently sent bodies.
	HistorySize int
	// SimilarityThreshold is the token-overlap ratio above which a
	// candidate counts as a near-duplicate of a history entry.
	SimilarityThreshold float64
	// MinSimilarityLen is the minimum normalized length (in runes) both
	// texts must have before the similarity rule applies. Short phrases
	// overlap by accident.
	MinSimilarityLen int
}

func (o Options) withDefaults() Options {
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.HistorySize <= 0 {
		o.HistorySize = DefaultHistorySize
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.MinSimilarityLen <= 0 {
		o.MinSimilarityLen = DefaultMinSimilarityLen
	}
	return o
}

// sendRecord is the per-job memory of recent activity. History entries are
// stored normalized.
type sendRecord struct {
	lastSent time.Time
	hasSent  bool
	history  []string
}

// Deduper keeps one sendRecord per job name plus the per-day markers.
// All state is process-lifetime only; a restart starts clean.
type Deduper struct {
	mu      sync.Mutex
	opts    Options
	records map[string]*sendRecord
	daily   map[string]struct{}
}

func NewDeduper(opts Options) *Deduper {
	return &Deduper{
		opts:    opts.withDefaults(),
		records: make(map[string]*sendRecord),
		daily:   make(map[string]struct{}),
	}
}

// ShouldSuppress reports whether the candidate must not be sent for the job
// right now. It never mutates state. An empty (after normalization)
// candidate is never suppressed; callers treat empty text as a generation
// failure upstream.
func (d *Deduper) ShouldSuppress(job string, now time.Time, candidate string) bool {
	norm := normalizeText(candidate)
	if norm == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[job]
	if !ok {
		return false
	}
	if rec.hasSent && now.Sub(rec.lastSent) < d.opts.Cooldown {
		return true
	}
	for _, prev := range rec.history {
		if prev == norm {
			return true
		}
		if runeLen(prev) > d.opts.MinSimilarityLen && runeLen(norm) > d.opts.MinSimilarityLen &&
			tokenOverlap(prev, norm) > d.opts.SimilarityThreshold {
			return true
		}
	}
	return false
}

// RecordSend notes a confirmed transmission. Call it exactly once per
// actually sent message and never on transport failure, so the next tick is
// free to retry.
func (d *Deduper) RecordSend(job string, now time.Time, sent string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[job]
	if !ok {
		rec = &sendRecord{}
		d.records[job] = rec
	}
	rec.lastSent = now
	rec.hasSent = true
	rec.history = append(rec.history, normalizeText(sent))
	if len(rec.history) > d.opts.HistorySize {
		rec.history = rec.history[len(rec.history)-d.opts.HistorySize:]
	}
}

// MarkSentForDay records that the job completed its once-per-calendar-day
// send for the given date. The date is taken in day's own location.
func (d *Deduper) MarkSentForDay(job string, day time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.daily[dayKey(job, day)] = struct{}{}
}

// AlreadySentForDay reports whether MarkSentForDay was called for the job on
// the given date within this process lifetime.
func (d *Deduper) AlreadySentForDay(job string, day time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.daily[dayKey(job, day)]
	return ok
}

func dayKey(job string, day time.Time) string {
	return job + "@" + day.Format("2006-01-02")
}
