package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFacility records adds/removes and can be primed with stale names or
// made to fail on a given add.
type fakeFacility struct {
	mu      sync.Mutex
	jobs    map[string]JobSpec
	failOn  string
	removed []string
}

func newFakeFacility(stale ...string) *fakeFacility {
	f := &fakeFacility{jobs: map[string]JobSpec{}}
	for _, name := range stale {
		f.jobs[name] = JobSpec{Name: name}
	}
	return f
}

func (f *fakeFacility) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.jobs[name]
	return ok
}

func (f *fakeFacility) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, name)
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeFacility) Add(spec JobSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if spec.Name == f.failOn {
		return fmt.Errorf("facility down")
	}
	f.jobs[spec.Name] = spec
	return nil
}

func (f *fakeFacility) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func specs() []JobSpec {
	noop := func() {}
	return []JobSpec{
		{Name: "good_morning", At: "08:30", Run: noop},
		{Name: "evening_summary", At: "21:00", Weekdays: []time.Weekday{time.Monday, time.Friday}, Run: noop},
		{Name: "hourly_checkin", Every: time.Hour, StartDelay: 13 * time.Minute, Run: noop},
	}
}

func Test_setup_idempotent(t *testing.T) {
	fac := newFakeFacility()
	r := NewRegistrar(fac)

	require.NoError(t, r.Setup(specs()))
	require.True(t, r.Installed())
	assert.Equal(t, 3, fac.count())

	// second call is a no-op: still exactly one timer per name, nothing
	// removed or re-added
	removedBefore := len(fac.removed)
	require.NoError(t, r.Setup(specs()))
	assert.Equal(t, 3, fac.count())
	assert.Equal(t, removedBefore, len(fac.removed))
}

func Test_setup_removes_stale_registrations(t *testing.T) {
	fac := newFakeFacility("good_morning")
	r := NewRegistrar(fac)

	require.NoError(t, r.Setup(specs()))
	assert.Equal(t, 3, fac.count())
	assert.Contains(t, fac.removed, "good_morning")
}

func Test_setup_all_or_nothing(t *testing.T) {
	fac := newFakeFacility()
	fac.failOn = "evening_summary"
	r := NewRegistrar(fac)

	err := r.Setup(specs())
	require.Error(t, err)
	assert.False(t, r.Installed())
	// the partially added jobs were rolled back
	assert.Equal(t, 0, fac.count())

	// a retry after the facility recovers succeeds
	fac.failOn = ""
	require.NoError(t, r.Setup(specs()))
	assert.True(t, r.Installed())
	assert.Equal(t, 3, fac.count())
}

func Test_setup_rejects_duplicate_names(t *testing.T) {
	fac := newFakeFacility()
	r := NewRegistrar(fac)

	dup := append(specs(), JobSpec{Name: "good_morning", At: "09:00", Run: func() {}})
	err := r.Setup(dup)
	require.Error(t, err)
	assert.Equal(t, 0, fac.count())
}

func Test_setup_rejects_invalid_spec(t *testing.T) {
	r := NewRegistrar(newFakeFacility())

	if err := r.Setup([]JobSpec{{Name: "x", Run: func() {}}}); err == nil {
		t.Fatal("expected error for spec without schedule")
	}
	if err := r.Setup([]JobSpec{{Name: "x", At: "08:00"}}); err == nil {
		t.Fatal("expected error for spec without callback")
	}
}

func Test_setup_concurrent_calls(t *testing.T) {
	fac := newFakeFacility()
	r := NewRegistrar(fac)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Setup(specs())
		}()
	}
	wg.Wait()

	assert.True(t, r.Installed())
	assert.Equal(t, 3, fac.count())
}
