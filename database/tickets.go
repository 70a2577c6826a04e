package database

import (
	"errors"

	"github.com/talait/talaitbot/models"
	"gorm.io/gorm"
)

func (db *Database) CreateTicket(ticket *models.Ticket) error {
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if err := db.conn.Create(ticket).Error; err != nil {
		db.log.Errorln("Failed to create ticket:", err)
		return err
	}
	return nil
}

// GetOpenTicket returns the user's open ticket for a challenge.
func (db *Database) GetOpenTicket(guildID, userID string, challengeID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := db.conn.Where("guild_id = ? AND user_id = ? AND challenge_id = ? AND status = ?",
		guildID, userID, challengeID, models.TicketOpen).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		db.log.Errorln("Failed to get ticket from DB:", err)
		return nil, err
	}
	return &ticket, nil
}

func (db *Database) GetTicketByChannel(guildID, channelID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := db.conn.Where("guild_id = ? AND channel_id = ?", guildID, channelID).Order("id desc").First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		db.log.Errorln("Failed to get ticket from DB:", err)
		return nil, err
	}
	return &ticket, nil
}

// GetTicketsByChallenge returns every ticket opened for a challenge, oldest first.
func (db *Database) GetTicketsByChallenge(guildID string, challengeID uint) (tickets []*models.Ticket, err error) {
	err = db.conn.Where("guild_id = ? AND challenge_id = ?", guildID, challengeID).Order("id asc").Find(&tickets).Error
	if err != nil {
		db.log.Errorln("Failed to get tickets from DB:", err)
	}
	return
}

func (db *Database) CloseTicket(guildID string, ticketID uint) error {
	res := db.conn.Model(&models.Ticket{}).Where("guild_id = ? AND id = ?", guildID, ticketID).Update("status", models.TicketClosed)
	if res.Error != nil {
		db.log.Errorln("Failed to close ticket:", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	db.log.Infoln("Closed ticket", ticketID)
	return nil
}

// SubmissionRecord is everything persisted when a ticket is submitted.
type SubmissionRecord struct {
	GuildID         string
	UserID          string
	Username        string
	TicketID        uint
	ChallengeID     uint
	ChannelID       string
	WeekKey         string
	Language        string
	Rank            int
	QualityScore    int
	XPAwarded       int
	SolvesChallenge bool
}

// RecordSubmission awards the submission's XP, marks the ticket as submitted
// and stores the submission in one transaction. A ticket can only be
// submitted once.
func (db *Database) RecordSubmission(rec SubmissionRecord) (*models.Submission, error) {
	var sub *models.Submission
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.Where("guild_id = ? AND id = ?", rec.GuildID, rec.TicketID).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.Submitted {
			return ErrAlreadySubmitted
		}

		if err := addXP(tx, rec.GuildID, rec.UserID, rec.Username, rec.XPAwarded, rec.WeekKey); err != nil {
			return err
		}

		err := tx.Model(&ticket).Updates(map[string]any{
			"submitted":     true,
			"quality_score": rec.QualityScore,
			"xp_awarded":    rec.XPAwarded,
		}).Error
		if err != nil {
			return err
		}

		sub = &models.Submission{
			ChallengeID:     rec.ChallengeID,
			GuildID:         rec.GuildID,
			UserID:          rec.UserID,
			TicketID:        rec.TicketID,
			ChannelID:       rec.ChannelID,
			Language:        rec.Language,
			Rank:            rec.Rank,
			QualityScore:    rec.QualityScore,
			XPAwarded:       rec.XPAwarded,
			SolvesChallenge: rec.SolvesChallenge,
		}
		return tx.Create(sub).Error
	})
	if err != nil && !errors.Is(err, ErrAlreadySubmitted) {
		db.log.Errorln("Failed to record submission:", err)
	}
	return sub, err
}
