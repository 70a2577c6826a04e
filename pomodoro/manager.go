package pomodoro

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyRunning = errors.New("pomodoro already running")
	ErrNoTimer        = errors.New("no pomodoro timer")
	ErrNotRunning     = errors.New("pomodoro is not running")
	ErrNotPaused      = errors.New("pomodoro is not paused")
	ErrPaused         = errors.New("pomodoro is paused")
)

// Notifier receives timer events from the run loop. Calls are made without
// holding the manager lock.
type Notifier interface {
	// Refresh updates the live status view.
	Refresh(s Status)
	// PhaseChanged is called after a phase ends; s describes the new phase.
	PhaseChanged(s Status)
}

type key struct {
	guild string
	user  string
}

// Manager owns every running timer. Each running timer has one goroutine.
type Manager struct {
	notifier Notifier
	log      *logrus.Logger

	now         func() time.Time
	tick        time.Duration
	updateEvery time.Duration

	mu     sync.Mutex
	timers map[key]*Timer
	closed bool
	wg     sync.WaitGroup
}

func NewManager(n Notifier, log *logrus.Logger) *Manager {
	return &Manager{
		notifier:    n,
		log:         log,
		now:         time.Now,
		tick:        time.Second,
		updateEvery: 5 * time.Second,
		timers:      make(map[key]*Timer),
	}
}

// Start begins a work session for the member. A paused timer is replaced by
// the new configuration and keeps its session count.
func (m *Manager) Start(guildID, userID string, cfg Config) (Status, error) {
	if err := cfg.Validate(); err != nil {
		return Status{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{guildID, userID}
	t, ok := m.timers[k]
	if ok && t.Running() {
		return Status{}, ErrAlreadyRunning
	}
	if !ok {
		t = NewTimer(guildID, userID, cfg, m.now)
		m.timers[k] = t
	}
	m.halt(t)
	t.Config = cfg
	t.StartWork()
	m.spawn(t)

	m.log.WithFields(logrus.Fields{"guild": guildID, "user": userID, "session": t.Session}).Info("Pomodoro started")
	return t.Status(), nil
}

// Attach records where the live status message for a timer lives.
func (m *Manager) Attach(guildID, userID, channelID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[key{guildID, userID}]; ok {
		t.ChannelID = channelID
		t.MessageID = messageID
	}
}

func (m *Manager) Status(guildID, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timers[key{guildID, userID}]
	if !ok {
		return Status{}, ErrNoTimer
	}
	return t.Status(), nil
}

func (m *Manager) Pause(guildID, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timers[key{guildID, userID}]
	if !ok {
		return Status{}, ErrNoTimer
	}
	if !t.Pause() {
		return Status{}, ErrNotRunning
	}
	m.halt(t)
	return t.Status(), nil
}

func (m *Manager) Resume(guildID, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timers[key{guildID, userID}]
	if !ok {
		return Status{}, ErrNoTimer
	}
	if !t.Resume() {
		return Status{}, ErrNotPaused
	}
	m.spawn(t)
	return t.Status(), nil
}

// Stop removes the member's timer. The returned status carries the number of
// sessions started and the live message to clean up.
func (m *Manager) Stop(guildID, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{guildID, userID}
	t, ok := m.timers[k]
	if !ok {
		return Status{}, ErrNoTimer
	}
	m.halt(t)
	t.Stop()
	delete(m.timers, k)
	m.log.WithFields(logrus.Fields{"guild": guildID, "user": userID, "sessions": t.Session}).Info("Pomodoro stopped")
	return t.Status(), nil
}

// Skip ends the current phase and returns the phase that was skipped.
// A paused timer has to be resumed first.
func (m *Manager) Skip(guildID, userID string) (Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timers[key{guildID, userID}]
	switch {
	case !ok:
		return Work, ErrNoTimer
	case t.Paused():
		return t.Phase(), ErrPaused
	case !t.Skip():
		return t.Phase(), ErrNotRunning
	}
	return t.Phase(), nil
}

// Focusing lists running work sessions in the guild.
func (m *Manager) Focusing(guildID string) []Status {
	return m.filter(guildID, func(t *Timer) bool { return t.Running() && !t.Phase().IsBreak() })
}

// OnBreak lists running breaks in the guild.
func (m *Manager) OnBreak(guildID string) []Status {
	return m.filter(guildID, func(t *Timer) bool { return t.Running() && t.Phase().IsBreak() })
}

// Leaderboard lists members of the guild with at least one session, most sessions first.
func (m *Manager) Leaderboard(guildID string) []Status {
	list := m.filter(guildID, func(t *Timer) bool { return t.Session > 0 })
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Session > list[j].Session
	})
	return list
}

func (m *Manager) filter(guildID string, keep func(*Timer) bool) []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Status
	for k, t := range m.timers {
		if k.guild == guildID && keep(t) {
			list = append(list, t.Status())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.Compare(list[i].UserID, list[j].UserID) < 0
	})
	return list
}

// Close stops every timer and waits for their goroutines to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	for k, t := range m.timers {
		m.halt(t)
		t.Stop()
		delete(m.timers, k)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// spawn starts the run loop for t. The caller holds m.mu.
func (m *Manager) spawn(t *Timer) {
	if m.closed {
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	m.wg.Add(1)
	go m.run(t, stop)
}

// halt ends the run loop of t, if any. The caller holds m.mu.
func (m *Manager) halt(t *Timer) {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (m *Manager) run(t *Timer, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	lastUpdate := m.now()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if t.stop != stop || !t.Running() {
			m.mu.Unlock()
			return
		}
		var changed, refresh bool
		if t.expired() {
			if t.Phase().IsBreak() {
				t.StartWork()
			} else {
				t.StartBreak()
			}
			changed = true
		}
		now := m.now()
		if changed || now.Sub(lastUpdate) >= m.updateEvery {
			refresh = t.MessageID != ""
			lastUpdate = now
		}
		status := t.Status()
		m.mu.Unlock()

		if refresh {
			m.notifier.Refresh(status)
		}
		if changed {
			m.log.WithFields(logrus.Fields{
				"guild":   status.GuildID,
				"user":    status.UserID,
				"phase":   status.Phase.String(),
				"session": status.Session,
			}).Debug("Pomodoro phase changed")
			m.notifier.PhaseChanged(status)
		}
	}
}

// Bar renders progress as a 20 cell bar.
func Bar(progress float64) string {
	const width = 20
	filled := min(max(int(progress*width), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
