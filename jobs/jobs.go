// Package jobs holds the scheduled job callbacks: each one generates a
// candidate text, gates it through the notification deduplicator and only
// then hands it to the transport.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kosmatov/palbot/config"
	"github.com/kosmatov/palbot/llm"
	"github.com/kosmatov/palbot/notify"
	"github.com/kosmatov/palbot/persona"
	"github.com/kosmatov/palbot/weather"
)

const (
	JobHourlyCheckin  = "hourly_checkin"
	JobGoodMorning    = "good_morning"
	JobEveningSummary = "evening_summary"
)

const generateTimeout = 60 * time.Second

// SendFunc transmits one message to the configured group chat.
type SendFunc func(text string) error

type Runner struct {
	// mu serializes the whole gate-generate-send-record sequence, so a
	// timer double-fire cannot pass the cooldown check twice. Global, not
	// per job: a few dozen calls per day at most.
	mu sync.Mutex

	ctx     context.Context
	dedup   *notify.Deduper
	gen     llm.Provider
	send    SendFunc
	weather *weather.Client
	loc     *time.Location

	targetName string
	quiet      persona.QuietWindow
	now        func() time.Time

	sent       metric.Int64Counter
	suppressed metric.Int64Counter
	failed     metric.Int64Counter
}

func NewRunner(ctx context.Context, dedup *notify.Deduper, gen llm.Provider, send SendFunc, wc *weather.Client, loc *time.Location, targetName string, quiet persona.QuietWindow) *Runner {
	meter := otel.Meter("palbot.jobs")
	sent, _ := meter.Int64Counter("palbot.jobs.sent_total",
		metric.WithDescription("scheduled messages sent"))
	suppressed, _ := meter.Int64Counter("palbot.jobs.suppressed_total",
		metric.WithDescription("scheduled messages suppressed by dedupe"))
	failed, _ := meter.Int64Counter("palbot.jobs.failed_total",
		metric.WithDescription("scheduled messages that failed generation or transport"))

	return &Runner{
		ctx:        ctx,
		dedup:      dedup,
		gen:        gen,
		send:       send,
		weather:    wc,
		loc:        loc,
		targetName: targetName,
		quiet:      quiet,
		now:        time.Now,
		sent:       sent,
		suppressed: suppressed,
		failed:     failed,
	}
}

// Specs builds the job list for the registrar from the schedule config.
func (r *Runner) Specs(cfg config.ScheduleConfig) ([]notify.JobSpec, error) {
	var specs []notify.JobSpec

	if cfg.Hourly.Enabled {
		now := r.now().In(r.loc)
		specs = append(specs, notify.JobSpec{
			Name:       JobHourlyCheckin,
			Every:      time.Hour,
			StartDelay: NextAligned(now, cfg.Hourly.Minute).Sub(now),
			Run:        r.HourlyCheckin,
		})
	}
	if cfg.Morning.Enabled {
		wds, err := config.ParseWeekdays(cfg.Morning.Weekdays)
		if err != nil {
			return nil, err
		}
		specs = append(specs, notify.JobSpec{
			Name:     JobGoodMorning,
			At:       cfg.Morning.At,
			Weekdays: wds,
			Run:      r.GoodMorning,
		})
	}
	if cfg.Evening.Enabled {
		wds, err := config.ParseWeekdays(cfg.Evening.Weekdays)
		if err != nil {
			return nil, err
		}
		specs = append(specs, notify.JobSpec{
			Name:     JobEveningSummary,
			At:       cfg.Evening.At,
			Weekdays: wds,
			Run:      r.EveningSummary,
		})
	}
	return specs, nil
}

// HourlyCheckin sends the recurring "how are you doing" question, except
// during the quiet window.
func (r *Runner) HourlyCheckin() {
	now := r.now().In(r.loc)
	if r.quiet.Contains(now) {
		slog.Debug("quiet window, hourly check-in skipped", "now", now)
		return
	}
	r.deliver(JobHourlyCheckin, persona.HourlyPrompt(now, r.targetName), false)
}

// GoodMorning sends the daily greeting at most once per calendar day.
func (r *Runner) GoodMorning() {
	now := r.now().In(r.loc)
	r.deliver(JobGoodMorning, persona.MorningPrompt(now, r.targetName), true)
}

// EveningSummary sends the daily wrap-up, folding in the weather when the
// fetch succeeds. A weather failure never blocks the message.
func (r *Runner) EveningSummary() {
	now := r.now().In(r.loc)

	weatherLine := ""
	if r.weather != nil {
		ctx, cancel := context.WithTimeout(r.ctx, generateTimeout)
		rep, err := r.weather.Fetch(ctx)
		cancel()
		if err != nil {
			slog.Warn("weather fetch failed for evening summary", "error", err)
		} else {
			weatherLine = rep.DescribeRU()
		}
	}
	r.deliver(JobEveningSummary, persona.EveningPrompt(now, r.targetName, weatherLine), true)
}

// deliver runs the gate-generate-send-record sequence for one job under the
// runner lock. markDay enables the strict once-per-calendar-day guard.
func (r *Runner) deliver(job, prompt string, markDay bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().In(r.loc)
	if markDay && r.dedup.AlreadySentForDay(job, now) {
		r.count(r.suppressed, job, "already_sent_today")
		slog.Debug("already sent today", "job", job)
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, generateTimeout)
	text, err := r.gen.Generate(ctx, persona.System, prompt)
	cancel()
	if err != nil {
		// dedupe state untouched, next tick retries
		r.count(r.failed, job, "generation")
		slog.Error("generation failed", "job", job, "error", err)
		return
	}

	if r.dedup.ShouldSuppress(job, now, text) {
		r.count(r.suppressed, job, "dedupe")
		slog.Info("candidate suppressed", "job", job)
		return
	}

	if err := r.send(text); err != nil {
		// no RecordSend on transport failure so a retry stays legal
		r.count(r.failed, job, "transport")
		slog.Error("send failed", "job", job, "error", err)
		return
	}

	r.dedup.RecordSend(job, now, text)
	if markDay {
		r.dedup.MarkSentForDay(job, now)
	}
	r.count(r.sent, job, "")
	slog.Info("scheduled message sent", "job", job)
}

func (r *Runner) count(c metric.Int64Counter, job, reason string) {
	if c == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("job", job)}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	c.Add(r.ctx, 1, metric.WithAttributes(attrs...))
}

// NextAligned returns the next moment at HH:<minute> strictly after dt.
// Example for minute 15: 09:02 -> 09:15, 09:20 -> 10:15.
func NextAligned(dt time.Time, minute int) time.Time {
	next := time.Date(dt.Year(), dt.Month(), dt.Day(), dt.Hour(), minute, 0, 0, dt.Location())
	if !dt.Before(next) {
		next = next.Add(time.Hour)
	}
	return next
}
