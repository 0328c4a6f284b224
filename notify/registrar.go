package notify

import (
	"fmt"
	"sync"
	"time"
)

// JobSpec describes one recurring job for the timer facility. Either At
// (wall-clock "15:04", optionally restricted to Weekdays) or Every (fixed
// interval with an optional StartDelay) must be set.
type JobSpec struct {
	Name       string
	At         string
	Weekdays   []time.Weekday
	Every      time.Duration
	StartDelay time.Duration
	Run        func()
}

func (s JobSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("job spec has empty name")
	}
	if s.Run == nil {
		return fmt.Errorf("job %q has nil callback", s.Name)
	}
	if s.At == "" && s.Every <= 0 {
		return fmt.Errorf("job %q has neither a time-of-day nor an interval", s.Name)
	}
	return nil
}

// Facility is the underlying timer/scheduler the Registrar installs jobs
// into. Implementations must key jobs by name.
type Facility interface {
	Has(name string) bool
	Remove(name string) error
	Add(spec JobSpec) error
}

type registrarState int

const (
	stateUninitialized registrarState = iota
	stateInstalling
	stateInstalled
)

// Registrar installs recurring timers exactly once per logical job name.
// Setup is safe to call multiple times; only the first call does work.
type Registrar struct {
	mu  sync.Mutex
	st  registrarState
	fac Facility
}

func NewRegistrar(fac Facility) *Registrar {
	return &Registrar{fac: fac}
}

// Setup removes any stale registration for each named job, then adds it
// fresh. All-or-nothing: if an add fails partway, every job added by this
// call is removed again, state returns to uninitialized and the error is
// returned, so the host can treat it as fatal and retry on next start.
// A second call in the same process observes the installed state and
// returns immediately.
func (r *Registrar) Setup(specs []JobSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.st != stateUninitialized {
		return nil
	}
	r.st = stateInstalling

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if err := spec.validate(); err != nil {
			r.st = stateUninitialized
			return err
		}
		if _, dup := seen[spec.Name]; dup {
			r.st = stateUninitialized
			return fmt.Errorf("duplicate job name %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}

	added := make([]string, 0, len(specs))
	for _, spec := range specs {
		// Defensive cleanup against a prior partial init leaving a
		// timer registered under this name.
		if r.fac.Has(spec.Name) {
			if err := r.fac.Remove(spec.Name); err != nil {
				r.rollback(added)
				return fmt.Errorf("remove stale job %q: %w", spec.Name, err)
			}
		}
		if err := r.fac.Add(spec); err != nil {
			r.rollback(added)
			return fmt.Errorf("add job %q: %w", spec.Name, err)
		}
		added = append(added, spec.Name)
	}

	r.st = stateInstalled
	return nil
}

// Installed reports whether Setup has completed successfully.
func (r *Registrar) Installed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st == stateInstalled
}

func (r *Registrar) rollback(added []string) {
	for _, name := range added {
		_ = r.fac.Remove(name)
	}
	r.st = stateUninitialized
}
