// Package sched adapts the gocron scheduler to the notify.Facility
// contract, keying jobs by tag.
package sched

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/kosmatov/palbot/notify"
)

var _ notify.Facility = (*Scheduler)(nil)

type Scheduler struct {
	s   *gocron.Scheduler
	loc *time.Location
}

// New builds a scheduler in the given location. Tags are unique, so the
// facility itself rejects a duplicate job name atomically.
func New(loc *time.Location) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.TagsUnique()
	return &Scheduler{s: s, loc: loc}
}

func (sc *Scheduler) Has(name string) bool {
	jobs, err := sc.s.FindJobsByTag(name)
	return err == nil && len(jobs) > 0
}

func (sc *Scheduler) Remove(name string) error {
	err := sc.s.RemoveByTag(name)
	if errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return nil
	}
	return err
}

func (sc *Scheduler) Add(spec notify.JobSpec) error {
	var s *gocron.Scheduler
	switch {
	case spec.At != "" && len(spec.Weekdays) > 0:
		s = sc.s.Every(1).Week()
		for _, wd := range spec.Weekdays {
			s = s.Weekday(wd)
		}
		s = s.At(spec.At)
	case spec.At != "":
		s = sc.s.Every(1).Day().At(spec.At)
	case spec.Every > 0:
		s = sc.s.Every(spec.Every)
		if spec.StartDelay > 0 {
			s = s.StartAt(time.Now().In(sc.loc).Add(spec.StartDelay))
		}
	default:
		return fmt.Errorf("job %q: no schedule", spec.Name)
	}

	if _, err := s.Tag(spec.Name).Do(spec.Run); err != nil {
		return fmt.Errorf("schedule job %q: %w", spec.Name, err)
	}
	return nil
}

func (sc *Scheduler) Len() int {
	return sc.s.Len()
}

// JobStatus is one scheduled job as reported by the status endpoint.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run"`
	NextRun time.Time `json:"next_run"`
}

func (sc *Scheduler) Statuses() []JobStatus {
	jobs := sc.s.Jobs()
	out := make([]JobStatus, 0, len(jobs))
	for _, j := range jobs {
		name := ""
		if tags := j.Tags(); len(tags) > 0 {
			name = tags[0]
		}
		out = append(out, JobStatus{
			Name:    name,
			LastRun: j.LastRun(),
			NextRun: j.NextRun(),
		})
	}
	return out
}

// Start launches the scheduler loop in the background.
func (sc *Scheduler) Start() {
	sc.s.StartAsync()
}

// Stop halts the scheduler loop; registered jobs stay in place.
func (sc *Scheduler) Stop() {
	sc.s.Stop()
}
