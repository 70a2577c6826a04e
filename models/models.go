package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChallengeActive = "active"
	ChallengeClosed = "closed"

	TicketOpen   = "open"
	TicketClosed = "closed"
)

var Difficulties = []string{"Easy", "Medium", "Hard"}

type Challenge struct {
	gorm.Model
	GuildID     string `gorm:"index"`
	Title       string
	Description string
	Difficulty  string
	Language    string
	Week        int
	PostedBy    string
	ChannelID   string
	Status      string `gorm:"index"`
	PostedAt    time.Time
	// EndsAt is zero for challenges without an automatic close.
	EndsAt      time.Time
	Submissions []Submission
}

// Remaining returns the time left before the challenge closes automatically.
func (c *Challenge) Remaining(now time.Time) time.Duration {
	if c.EndsAt.IsZero() || !now.Before(c.EndsAt) {
		return 0
	}
	return c.EndsAt.Sub(now)
}

// WeekKey is the key under which weekly XP for this challenge is recorded.
func (c *Challenge) WeekKey() string {
	return WeekKey(c.Week)
}

type Submission struct {
	gorm.Model
	ChallengeID     uint   `gorm:"index"`
	GuildID         string `gorm:"index"`
	UserID          string
	TicketID        uint
	ChannelID       string
	Language        string
	Rank            int
	QualityScore    int
	XPAwarded       int
	SolvesChallenge bool
}

type Ticket struct {
	gorm.Model
	GuildID      string `gorm:"index"`
	UserID       string `gorm:"index"`
	ChannelID    string `gorm:"index"`
	ChallengeID  uint   `gorm:"index"`
	Status       string
	Submitted    bool
	QualityScore int
	XPAwarded    int
}

// Member is a user's leaderboard row in a guild.
type Member struct {
	GuildID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	Username  string
	XP        int
	TotalXP   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WeeklyXP struct {
	GuildID string `gorm:"primaryKey"`
	UserID  string `gorm:"primaryKey"`
	Week    string `gorm:"primaryKey"`
	XP      int
}

func (WeeklyXP) TableName() string { return "weekly_xp" }

type Badge struct {
	GuildID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

type HallOfFameEntry struct {
	gorm.Model
	GuildID  string `gorm:"index"`
	Month    string `gorm:"index"`
	UserID   string
	Username string
	XP       int
	TotalXP  int
	Rank     int
}

// Guild tracks per-guild bookkeeping.
type Guild struct {
	GuildID        string `gorm:"primaryKey"`
	LastResetMonth string
}
