// Package pomodoro runs per-member Pomodoro timers with live status updates.
package pomodoro

import (
	"errors"
	"time"
)

var (
	ErrWorkRange       = errors.New("work time must be between 1-120 minutes")
	ErrShortBreakRange = errors.New("short break must be between 1-60 minutes")
	ErrLongBreakRange  = errors.New("long break must be between 1-60 minutes")
	ErrSessionsRange   = errors.New("sessions must be between 1-10")
)

type Phase int

const (
	Work Phase = iota
	ShortBreak
	LongBreak
)

func (p Phase) String() string {
	switch p {
	case ShortBreak:
		return "short break"
	case LongBreak:
		return "long break"
	}
	return "work"
}

func (p Phase) IsBreak() bool {
	return p != Work
}

// Config holds phase lengths in minutes.
type Config struct {
	Work              int
	ShortBreak        int
	LongBreak         int
	SessionsUntilLong int
}

func DefaultConfig() Config {
	return Config{Work: 25, ShortBreak: 5, LongBreak: 15, SessionsUntilLong: 4}
}

func (c Config) Validate() error {
	switch {
	case c.Work < 1 || c.Work > 120:
		return ErrWorkRange
	case c.ShortBreak < 1 || c.ShortBreak > 60:
		return ErrShortBreakRange
	case c.LongBreak < 1 || c.LongBreak > 60:
		return ErrLongBreakRange
	case c.SessionsUntilLong < 1 || c.SessionsUntilLong > 10:
		return ErrSessionsRange
	}
	return nil
}

// Duration returns the length of phase p.
func (c Config) Duration(p Phase) time.Duration {
	switch p {
	case ShortBreak:
		return time.Duration(c.ShortBreak) * time.Minute
	case LongBreak:
		return time.Duration(c.LongBreak) * time.Minute
	}
	return time.Duration(c.Work) * time.Minute
}

// Timer is the state of one member's Pomodoro. It is not safe for concurrent
// use; Manager serializes access.
type Timer struct {
	GuildID string
	UserID  string
	Config  Config
	Session int

	// Live status message, set by the caller after posting it.
	ChannelID string
	MessageID string

	phase    Phase
	running  bool
	paused   bool
	stopped  bool
	endsAt   time.Time
	leftOver time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewTimer(guildID, userID string, cfg Config, now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{GuildID: guildID, UserID: userID, Config: cfg, now: now}
}

// StartWork begins the next work session.
func (t *Timer) StartWork() {
	t.Session++
	t.begin(Work)
}

// StartBreak begins a break and reports whether it is a long one.
func (t *Timer) StartBreak() bool {
	long := t.Config.SessionsUntilLong > 0 && t.Session%t.Config.SessionsUntilLong == 0
	if long {
		t.begin(LongBreak)
	} else {
		t.begin(ShortBreak)
	}
	return long
}

func (t *Timer) begin(p Phase) {
	t.phase = p
	t.running = true
	t.paused = false
	t.stopped = false
	t.leftOver = 0
	t.endsAt = t.now().Add(t.Config.Duration(p))
}

func (t *Timer) Pause() bool {
	if !t.running {
		return false
	}
	t.leftOver = max(0, t.endsAt.Sub(t.now()))
	t.running = false
	t.paused = true
	return true
}

func (t *Timer) Resume() bool {
	if t.running || !t.paused {
		return false
	}
	t.endsAt = t.now().Add(t.leftOver)
	t.running = true
	t.paused = false
	t.leftOver = 0
	return true
}

func (t *Timer) Stop() {
	t.running = false
	t.paused = false
	t.stopped = true
	t.leftOver = 0
	t.endsAt = time.Time{}
}

// Skip ends the current phase now; the run loop moves on at its next tick.
func (t *Timer) Skip() bool {
	if !t.running {
		return false
	}
	t.endsAt = t.now()
	return true
}

// TimeLeft returns the remaining time in the current phase, in whole seconds.
func (t *Timer) TimeLeft() time.Duration {
	switch {
	case t.paused:
		return t.leftOver.Truncate(time.Second)
	case t.endsAt.IsZero():
		return 0
	}
	return max(0, t.endsAt.Sub(t.now())).Truncate(time.Second)
}

func (t *Timer) Phase() Phase {
	return t.phase
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Paused() bool {
	return t.paused
}

// Progress is the elapsed fraction of the current phase, 0..1.
func (t *Timer) Progress() float64 {
	total := t.Config.Duration(t.phase)
	if total <= 0 || (!t.running && !t.paused) {
		return 0
	}
	p := 1 - float64(t.TimeLeft())/float64(total)
	return min(max(p, 0), 1)
}

func (t *Timer) expired() bool {
	return t.running && !t.now().Before(t.endsAt)
}

// Status is a point-in-time copy of a Timer.
type Status struct {
	GuildID   string
	UserID    string
	ChannelID string
	MessageID string
	Config    Config
	Session   int
	Phase     Phase
	Running   bool
	Paused    bool
	Left      time.Duration
	Progress  float64
}

func (t *Timer) Status() Status {
	return Status{
		GuildID:   t.GuildID,
		UserID:    t.UserID,
		ChannelID: t.ChannelID,
		MessageID: t.MessageID,
		Config:    t.Config,
		Session:   t.Session,
		Phase:     t.phase,
		Running:   t.running,
		Paused:    t.paused,
		Left:      t.TimeLeft(),
		Progress:  t.Progress(),
	}
}
