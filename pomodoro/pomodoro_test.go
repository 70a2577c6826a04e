package pomodoro

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recorder struct {
	mu       sync.Mutex
	changes  []Status
	refreshs int
}

func (r *recorder) Refresh(Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshs++
}

func (r *recorder) PhaseChanged(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, s)
}

func (r *recorder) Changes() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.changes...)
}

func (r *recorder) Refreshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshs
}

func newTestManager(clock *fakeClock, n Notifier) *Manager {
	log := logrus.New()
	log.SetOutput(io.Discard)
	m := NewManager(n, log)
	m.now = clock.Now
	m.tick = time.Millisecond
	m.updateEvery = 5 * time.Second
	return m
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	tests := []struct {
		cfg  Config
		want error
	}{
		{Config{Work: 0, ShortBreak: 5, LongBreak: 15, SessionsUntilLong: 4}, ErrWorkRange},
		{Config{Work: 121, ShortBreak: 5, LongBreak: 15, SessionsUntilLong: 4}, ErrWorkRange},
		{Config{Work: 25, ShortBreak: 61, LongBreak: 15, SessionsUntilLong: 4}, ErrShortBreakRange},
		{Config{Work: 25, ShortBreak: 5, LongBreak: 0, SessionsUntilLong: 4}, ErrLongBreakRange},
		{Config{Work: 25, ShortBreak: 5, LongBreak: 15, SessionsUntilLong: 11}, ErrSessionsRange},
		{Config{Work: 120, ShortBreak: 60, LongBreak: 60, SessionsUntilLong: 10}, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.Validate(), "%+v", tt.cfg)
	}
}

func TestTimerPhases(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer("g", "u", Config{Work: 25, ShortBreak: 5, LongBreak: 15, SessionsUntilLong: 2}, clock.Now)

	timer.StartWork()
	assert.Equal(t, 1, timer.Session)
	assert.Equal(t, Work, timer.Phase())
	assert.Equal(t, 25*time.Minute, timer.TimeLeft())
	assert.Zero(t, timer.Progress())

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 15*time.Minute, timer.TimeLeft())
	assert.InDelta(t, 0.4, timer.Progress(), 0.001)

	assert.False(t, timer.StartBreak())
	assert.Equal(t, ShortBreak, timer.Phase())
	assert.Equal(t, 5*time.Minute, timer.TimeLeft())

	timer.StartWork()
	assert.True(t, timer.StartBreak())
	assert.Equal(t, LongBreak, timer.Phase())
	assert.Equal(t, 15*time.Minute, timer.TimeLeft())
}

func TestTimerPauseResume(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer("g", "u", DefaultConfig(), clock.Now)

	assert.False(t, timer.Pause())
	timer.StartWork()
	assert.False(t, timer.Resume())

	clock.Advance(5*time.Minute + 500*time.Millisecond)
	require.True(t, timer.Pause())
	assert.True(t, timer.Paused())
	assert.False(t, timer.Running())
	assert.Equal(t, 19*time.Minute+59*time.Second, timer.TimeLeft())

	clock.Advance(time.Hour)
	assert.Equal(t, 19*time.Minute+59*time.Second, timer.TimeLeft())

	require.True(t, timer.Resume())
	assert.True(t, timer.Running())
	clock.Advance(time.Minute)
	assert.Equal(t, 18*time.Minute+59*time.Second, timer.TimeLeft())

	assert.True(t, timer.Skip())
	assert.Zero(t, timer.TimeLeft())
	assert.True(t, timer.expired())

	timer.Stop()
	assert.False(t, timer.Running())
	assert.False(t, timer.Skip())
	assert.Zero(t, timer.TimeLeft())
}

func TestManagerStartRejectsRunning(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(clock, &recorder{})
	defer m.Close()

	_, err := m.Start("g", "u", Config{Work: 0})
	assert.ErrorIs(t, err, ErrWorkRange)

	s, err := m.Start("g", "u", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Session)
	assert.True(t, s.Running)

	_, err = m.Start("g", "u", DefaultConfig())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	_, err = m.Start("g", "other", DefaultConfig())
	assert.NoError(t, err)
}

func TestManagerPhaseChange(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := newTestManager(clock, rec)
	defer m.Close()

	_, err := m.Start("g", "u", Config{Work: 1, ShortBreak: 1, LongBreak: 2, SessionsUntilLong: 1})
	require.NoError(t, err)
	m.Attach("g", "u", "chan", "msg")

	clock.Advance(61 * time.Second)
	require.Eventually(t, func() bool { return len(rec.Changes()) == 1 }, time.Second, time.Millisecond)
	change := rec.Changes()[0]
	assert.Equal(t, LongBreak, change.Phase)
	assert.Equal(t, 1, change.Session)
	assert.Equal(t, "msg", change.MessageID)
	assert.GreaterOrEqual(t, rec.Refreshes(), 1)

	clock.Advance(2 * time.Minute)
	require.Eventually(t, func() bool { return len(rec.Changes()) == 2 }, time.Second, time.Millisecond)
	change = rec.Changes()[1]
	assert.Equal(t, Work, change.Phase)
	assert.Equal(t, 2, change.Session)
}

func TestManagerSkip(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := newTestManager(clock, rec)
	defer m.Close()

	_, err := m.Skip("g", "u")
	assert.ErrorIs(t, err, ErrNoTimer)

	_, err = m.Start("g", "u", DefaultConfig())
	require.NoError(t, err)
	phase, err := m.Skip("g", "u")
	require.NoError(t, err)
	assert.Equal(t, Work, phase)
	require.Eventually(t, func() bool { return len(rec.Changes()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, ShortBreak, rec.Changes()[0].Phase)
}

func TestManagerSkipPaused(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := newTestManager(clock, rec)
	defer m.Close()

	_, err := m.Start("g", "u", DefaultConfig())
	require.NoError(t, err)
	_, err = m.Pause("g", "u")
	require.NoError(t, err)

	phase, err := m.Skip("g", "u")
	assert.ErrorIs(t, err, ErrPaused)
	assert.Equal(t, Work, phase)
	s, err := m.Status("g", "u")
	require.NoError(t, err)
	assert.True(t, s.Paused, "a refused skip leaves the timer paused")

	_, err = m.Resume("g", "u")
	require.NoError(t, err)
	_, err = m.Skip("g", "u")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.Changes()) == 1 }, time.Second, time.Millisecond)
}

func TestManagerPauseResumeStop(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	m := newTestManager(clock, rec)
	defer m.Close()

	_, err := m.Pause("g", "u")
	assert.ErrorIs(t, err, ErrNoTimer)

	_, err = m.Start("g", "u", DefaultConfig())
	require.NoError(t, err)
	_, err = m.Resume("g", "u")
	assert.ErrorIs(t, err, ErrNotPaused)

	s, err := m.Pause("g", "u")
	require.NoError(t, err)
	assert.True(t, s.Paused)
	_, err = m.Pause("g", "u")
	assert.ErrorIs(t, err, ErrNotRunning)

	// a paused timer does not change phase
	clock.Advance(time.Hour)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, rec.Changes())

	s, err = m.Resume("g", "u")
	require.NoError(t, err)
	assert.True(t, s.Running)
	assert.Equal(t, 25*time.Minute, s.Left)

	s, err = m.Stop("g", "u")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Session)
	assert.False(t, s.Running)

	_, err = m.Status("g", "u")
	assert.ErrorIs(t, err, ErrNoTimer)
}

func TestManagerListings(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(clock, &recorder{})
	defer m.Close()

	for _, u := range []string{"a", "b", "c"} {
		_, err := m.Start("g", u, DefaultConfig())
		require.NoError(t, err)
	}
	_, err := m.Start("other", "d", DefaultConfig())
	require.NoError(t, err)

	// b gets a second session
	_, err = m.Pause("g", "b")
	require.NoError(t, err)
	_, err = m.Start("g", "b", DefaultConfig())
	require.NoError(t, err)

	// c moves to a break
	_, err = m.Skip("g", "c")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(m.OnBreak("g")) == 1 }, time.Second, time.Millisecond)

	focusing := m.Focusing("g")
	require.Len(t, focusing, 2)
	assert.Equal(t, "a", focusing[0].UserID)
	assert.Equal(t, "b", focusing[1].UserID)
	assert.Equal(t, "c", m.OnBreak("g")[0].UserID)

	board := m.Leaderboard("g")
	require.Len(t, board, 3)
	assert.Equal(t, "b", board[0].UserID)
	assert.Equal(t, 2, board[0].Session)

	assert.Empty(t, m.Focusing("nobody"))
}

func TestManagerClose(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(clock, &recorder{})
	_, err := m.Start("g", "u", DefaultConfig())
	require.NoError(t, err)
	m.Close()

	_, err = m.Status("g", "u")
	assert.ErrorIs(t, err, ErrNoTimer)
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 20), Bar(0))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), Bar(0.5))
	assert.Equal(t, strings.Repeat("█", 20), Bar(1.5))
}
