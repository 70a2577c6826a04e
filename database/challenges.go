package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/talait/talaitbot/models"
	"gorm.io/gorm"
)

func (db *Database) CreateChallenge(challenge *models.Challenge) error {
	if challenge.Status == "" {
		challenge.Status = models.ChallengeActive
	}
	if err := db.conn.Create(challenge).Error; err != nil {
		db.log.Errorln("Failed to create challenge:", err)
		return err
	}
	return nil
}

// GetActiveChallenge returns the most recently posted active challenge of a guild.
func (db *Database) GetActiveChallenge(guildID string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := db.conn.Where("guild_id = ? AND status = ?", guildID, models.ChallengeActive).Order("id desc").First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveChallenge
	} else if err != nil {
		db.log.Errorln("Failed to get active challenge from DB:", err)
		return nil, err
	}
	return &challenge, nil
}

// GetLatestChallenge returns the most recently posted challenge of a guild, regardless of status.
func (db *Database) GetLatestChallenge(guildID string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := db.conn.Where("guild_id = ?", guildID).Order("id desc").First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChallengeNotFound
	} else if err != nil {
		db.log.Errorln("Failed to get latest challenge from DB:", err)
		return nil, err
	}
	return &challenge, nil
}

func (db *Database) GetActiveOrLatestChallenge(guildID string) (*models.Challenge, error) {
	challenge, err := db.GetActiveChallenge(guildID)
	if errors.Is(err, ErrNoActiveChallenge) {
		return db.GetLatestChallenge(guildID)
	}
	return challenge, err
}

func (db *Database) GetChallenge(guildID string, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := db.conn.Where("guild_id = ? AND id = ?", guildID, id).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChallengeNotFound
	}
	return &challenge, err
}

func (db *Database) CloseChallenge(guildID string, id uint) error {
	res := db.conn.Model(&models.Challenge{}).Where("guild_id = ? AND id = ?", guildID, id).Update("status", models.ChallengeClosed)
	if res.Error != nil {
		db.log.Errorln("Failed to close challenge:", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

// ExtendChallenge pushes back the automatic close of a challenge. Challenges
// without a deadline get one relative to now.
func (db *Database) ExtendChallenge(guildID string, id uint, d time.Duration, now time.Time) (*models.Challenge, error) {
	var challenge *models.Challenge
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var c models.Challenge
		if err := tx.Where("guild_id = ? AND id = ?", guildID, id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}
		base := c.EndsAt
		if base.IsZero() || base.Before(now) {
			base = now
		}
		c.EndsAt = base.Add(d)
		if err := tx.Model(&c).Update("ends_at", c.EndsAt).Error; err != nil {
			return fmt.Errorf("failed to extend challenge: %w", err)
		}
		challenge = &c
		return nil
	})
	return challenge, err
}

// GetExpiredChallenges returns active challenges whose deadline has passed.
func (db *Database) GetExpiredChallenges(now time.Time) ([]*models.Challenge, error) {
	var active []*models.Challenge
	if err := db.conn.Where("status = ?", models.ChallengeActive).Find(&active).Error; err != nil {
		db.log.Errorln("Failed to get active challenges from DB:", err)
		return nil, err
	}
	var expired []*models.Challenge
	for _, c := range active {
		if !c.EndsAt.IsZero() && !now.Before(c.EndsAt) {
			expired = append(expired, c)
		}
	}
	return expired, nil
}

func (db *Database) CountSubmissions(challengeID uint) (int, error) {
	var n int64
	if err := db.conn.Model(&models.Submission{}).Where("challenge_id = ?", challengeID).Count(&n).Error; err != nil {
		db.log.Errorln("Failed to count submissions:", err)
		return 0, err
	}
	return int(n), nil
}
