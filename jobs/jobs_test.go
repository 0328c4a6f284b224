package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosmatov/palbot/config"
	"github.com/kosmatov/palbot/notify"
	"github.com/kosmatov/palbot/persona"
)

type fakeGen struct {
	texts []string
	calls int
	err   error
}

func (g *fakeGen) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	t := g.texts[0]
	if len(g.texts) > 1 {
		g.texts = g.texts[1:]
	}
	return t, nil
}

type fakeSink struct {
	sent []string
	err  error
}

func (s *fakeSink) send(text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func newRunner(t *testing.T, gen *fakeGen, sink *fakeSink, at time.Time) *Runner {
	t.Helper()
	r := NewRunner(
		t.Context(),
		notify.NewDeduper(notify.Options{Cooldown: 10 * time.Minute}),
		gen,
		sink.send,
		nil,
		time.UTC,
		"Максим",
		persona.QuietWindow{From: 22, Until: 9},
	)
	r.now = func() time.Time { return at }
	return r
}

func Test_daily_job_sends_once(t *testing.T) {
	gen := &fakeGen{texts: []string{
		"Доброе утро, Максим, хорошего дня!",
		"Совсем другое утреннее приветствие сегодня!",
	}}
	sink := &fakeSink{}
	r := newRunner(t, gen, sink, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC))

	r.GoodMorning()
	require.Len(t, sink.sent, 1)

	// a second fire the same day is stopped by the daily marker before
	// the generator is even called
	calls := gen.calls
	r.GoodMorning()
	assert.Len(t, sink.sent, 1)
	assert.Equal(t, calls, gen.calls)
}

func Test_daily_marker_resets_next_day(t *testing.T) {
	gen := &fakeGen{texts: []string{
		"Доброе утро, Максим, хорошего дня!",
		"Совсем другое утреннее приветствие сегодня!",
	}}
	sink := &fakeSink{}
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	r := newRunner(t, gen, sink, at)

	r.GoodMorning()
	at = at.AddDate(0, 0, 1)
	r.now = func() time.Time { return at }
	r.GoodMorning()

	assert.Len(t, sink.sent, 2)
}

func Test_generation_failure_skips_quietly(t *testing.T) {
	gen := &fakeGen{err: fmt.Errorf("provider down")}
	sink := &fakeSink{}
	r := newRunner(t, gen, sink, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC))

	r.GoodMorning()
	assert.Empty(t, sink.sent)

	// dedupe state untouched: the retry succeeds and sends
	gen.err = nil
	gen.texts = []string{"Доброе утро, Максим, хорошего дня!"}
	r.GoodMorning()
	assert.Len(t, sink.sent, 1)
}

func Test_transport_failure_allows_retry(t *testing.T) {
	gen := &fakeGen{texts: []string{"Доброе утро, Максим, хорошего дня!"}}
	sink := &fakeSink{err: fmt.Errorf("telegram down")}
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	r := newRunner(t, gen, sink, at)

	r.GoodMorning()
	assert.Empty(t, sink.sent)

	// next tick: no cooldown, no daily marker left behind
	sink.err = nil
	at = at.Add(time.Hour)
	r.now = func() time.Time { return at }
	r.GoodMorning()
	assert.Len(t, sink.sent, 1)
}

func Test_hourly_respects_quiet_window(t *testing.T) {
	gen := &fakeGen{texts: []string{"Максим, чем сейчас занимаешься вообще?"}}
	sink := &fakeSink{}
	r := newRunner(t, gen, sink, time.Date(2024, 5, 1, 23, 15, 0, 0, time.UTC))

	r.HourlyCheckin()
	assert.Empty(t, sink.sent)
	assert.Zero(t, gen.calls)

	r.now = func() time.Time { return time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC) }
	r.HourlyCheckin()
	assert.Len(t, sink.sent, 1)
}

func Test_hourly_cooldown_blocks_double_fire(t *testing.T) {
	gen := &fakeGen{texts: []string{
		"Максим, чем сейчас занимаешься вообще?",
		"Максим, как проходит твой день сегодня?",
	}}
	sink := &fakeSink{}
	at := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	r := newRunner(t, gen, sink, at)

	r.HourlyCheckin()
	// misfired second tick seconds later, distinct text
	at = at.Add(20 * time.Second)
	r.now = func() time.Time { return at }
	r.HourlyCheckin()

	assert.Len(t, sink.sent, 1)
}

func Test_next_aligned(t *testing.T) {
	loc := time.UTC
	dt := time.Date(2024, 5, 1, 9, 2, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 15, 0, 0, loc), NextAligned(dt, 15))

	dt = time.Date(2024, 5, 1, 9, 20, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 0, 0, loc), NextAligned(dt, 15))

	dt = time.Date(2024, 5, 1, 9, 15, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 0, 0, loc), NextAligned(dt, 15))
}

func Test_specs_from_config(t *testing.T) {
	gen := &fakeGen{texts: []string{"x"}}
	r := newRunner(t, gen, &fakeSink{}, time.Date(2024, 5, 1, 9, 2, 0, 0, time.UTC))

	cfg := config.ScheduleConfig{
		Hourly:  config.HourlyJob{Enabled: true, Minute: 15},
		Morning: config.DailyJob{Enabled: true, At: "08:30"},
		Evening: config.DailyJob{Enabled: true, At: "21:00", Weekdays: []string{"mon", "fri"}},
	}
	specs, err := r.Specs(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 3)

	assert.Equal(t, JobHourlyCheckin, specs[0].Name)
	assert.Equal(t, time.Hour, specs[0].Every)
	assert.Equal(t, 13*time.Minute, specs[0].StartDelay)

	assert.Equal(t, "08:30", specs[1].At)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, specs[2].Weekdays)
}
