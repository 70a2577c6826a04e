package database

import (
	"errors"
	"sort"

	"github.com/talait/talaitbot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResetMonth archives the guild's leaderboard in the hall of fame under
// monthKey and zeroes monthly XP. Total XP, badges and tickets are kept.
// Resetting the same month twice adds the second period's XP to the
// existing snapshot.
func (db *Database) ResetMonth(guildID, monthKey string) error {
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var members []*models.Member
		if err := tx.Where("guild_id = ?", guildID).Find(&members).Error; err != nil {
			return err
		}
		var existing []*models.HallOfFameEntry
		if err := tx.Where("guild_id = ? AND month = ?", guildID, monthKey).Find(&existing).Error; err != nil {
			return err
		}
		byUser := make(map[string]*models.HallOfFameEntry, len(existing))
		entries := existing
		for _, e := range existing {
			byUser[e.UserID] = e
		}
		for _, m := range members {
			if e, ok := byUser[m.UserID]; ok {
				e.XP += m.XP
				e.TotalXP = m.TotalXP
				e.Username = m.Username
				continue
			}
			entries = append(entries, &models.HallOfFameEntry{
				GuildID:  guildID,
				Month:    monthKey,
				UserID:   m.UserID,
				Username: m.Username,
				XP:       m.XP,
				TotalXP:  m.TotalXP,
			})
		}
		rankEntries(entries)
		for _, e := range entries {
			if err := tx.Save(e).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Member{}).Where("guild_id = ?", guildID).Update("xp", 0).Error
	})
	if err != nil {
		db.log.Errorln("Failed to reset monthly leaderboard:", err)
		return err
	}
	db.log.Infof("Monthly leaderboard reset for guild %s (%s)", guildID, monthKey)
	return nil
}

func rankEntries(entries []*models.HallOfFameEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		if entries[i].TotalXP != entries[j].TotalXP {
			return entries[i].TotalXP > entries[j].TotalXP
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i, e := range entries {
		e.Rank = i + 1
	}
}

// HallOfFameMonth is one archived monthly leaderboard.
type HallOfFameMonth struct {
	Month   string
	Entries []*models.HallOfFameEntry
}

// GetHallOfFame returns the guild's archived leaderboards, newest month first.
func (db *Database) GetHallOfFame(guildID string) ([]*HallOfFameMonth, error) {
	var entries []*models.HallOfFameEntry
	if err := db.conn.Where("guild_id = ?", guildID).Order("month desc, rank asc").Find(&entries).Error; err != nil {
		db.log.Errorln("Failed to get hall of fame from DB:", err)
		return nil, err
	}
	var months []*HallOfFameMonth
	for _, e := range entries {
		if len(months) == 0 || months[len(months)-1].Month != e.Month {
			months = append(months, &HallOfFameMonth{Month: e.Month})
		}
		last := months[len(months)-1]
		last.Entries = append(last.Entries, e)
	}
	sort.SliceStable(months, func(i, j int) bool { return months[i].Month > months[j].Month })
	return months, nil
}

// LastReset returns the month key of the guild's last monthly reset, or "" if it never reset.
func (db *Database) LastReset(guildID string) (string, error) {
	var guild models.Guild
	err := db.conn.Where("guild_id = ?", guildID).First(&guild).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return guild.LastResetMonth, err
}

// MarkReset records monthKey as the guild's last reset without touching the leaderboard.
func (db *Database) MarkReset(guildID, monthKey string) error {
	return markReset(db.conn, guildID, monthKey)
}

func markReset(tx *gorm.DB, guildID, monthKey string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_reset_month"}),
	}).Create(&models.Guild{GuildID: guildID, LastResetMonth: monthKey}).Error
}
