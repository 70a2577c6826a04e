package database

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talait/talaitbot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureMember creates the member's leaderboard row if needed and refreshes its username.
func (db *Database) EnsureMember(guildID, userID, username string) error {
	return ensureMember(db.conn, guildID, userID, username)
}

func ensureMember(tx *gorm.DB, guildID, userID, username string) error {
	member := models.Member{GuildID: guildID, UserID: userID, Username: username}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&member).Error
}

// AddXP adds to the member's monthly, total and weekly XP.
func (db *Database) AddXP(guildID, userID, username string, amount int, weekKey string) error {
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		return addXP(tx, guildID, userID, username, amount, weekKey)
	})
	if err != nil {
		db.log.Errorln("Failed to add XP:", err)
	}
	return err
}

func addXP(tx *gorm.DB, guildID, userID, username string, amount int, weekKey string) error {
	if err := ensureMember(tx, guildID, userID, username); err != nil {
		return fmt.Errorf("ensure member: %w", err)
	}
	err := tx.Model(&models.Member{}).Where("guild_id = ? AND user_id = ?", guildID, userID).Updates(map[string]any{
		"xp":       gorm.Expr("xp + ?", amount),
		"total_xp": gorm.Expr("total_xp + ?", amount),
	}).Error
	if err != nil {
		return fmt.Errorf("update xp: %w", err)
	}
	if weekKey == "" {
		return nil
	}
	weekly := models.WeeklyXP{GuildID: guildID, UserID: userID, Week: weekKey, XP: amount}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "user_id"}, {Name: "week"}},
		DoUpdates: clause.Assignments(map[string]any{"xp": gorm.Expr("weekly_xp.xp + ?", amount)}),
	}).Create(&weekly).Error
}

// RemoveXP subtracts from the member's monthly XP, never going below zero.
// Total XP is left untouched.
func (db *Database) RemoveXP(guildID, userID string, amount int) (*models.Member, error) {
	var member models.Member
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		member.XP -= amount
		if member.XP < 0 {
			member.XP = 0
		}
		return tx.Model(&member).Update("xp", member.XP).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddBadge gives the member a badge; adding a badge twice is a no-op.
func (db *Database) AddBadge(guildID, userID, badge string) error {
	return db.conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Badge{
		GuildID: guildID,
		UserID:  userID,
		Name:    badge,
	}).Error
}

// AwardWinner credits a placed member with XP and a badge in one transaction.
func (db *Database) AwardWinner(guildID, userID, username string, amount int, weekKey, badge string) error {
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		if err := addXP(tx, guildID, userID, username, amount, weekKey); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Badge{
			GuildID: guildID,
			UserID:  userID,
			Name:    badge,
		}).Error
	})
	if err != nil {
		db.log.Errorln("Failed to award winner:", err)
	}
	return err
}

func (db *Database) GetBadges(guildID, userID string) ([]string, error) {
	var badges []string
	err := db.conn.Model(&models.Badge{}).Where("guild_id = ? AND user_id = ?", guildID, userID).Order("created_at asc").Pluck("name", &badges).Error
	return badges, err
}

func (db *Database) GetMember(guildID, userID string) (*models.Member, error) {
	var member models.Member
	err := db.conn.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	} else if err != nil {
		db.log.Errorln("Failed to get member from DB:", err)
		return nil, err
	}
	return &member, nil
}

// GetLeaderboard returns the guild's members ordered by monthly XP, then total XP.
func (db *Database) GetLeaderboard(guildID string) (members []*models.Member, err error) {
	err = db.conn.Where("guild_id = ?", guildID).Order("xp desc, total_xp desc, user_id asc").Find(&members).Error
	if err != nil {
		db.log.Errorln("Failed to get leaderboard from DB:", err)
	}
	return
}

// GetRank returns the member's 1-based leaderboard position, or 0 if the member is not ranked.
func (db *Database) GetRank(guildID, userID string) (int, error) {
	members, err := db.GetLeaderboard(guildID)
	if err != nil {
		return 0, err
	}
	for i, m := range members {
		if m.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// GetWeeklyXP returns the member's XP per week key, in week order.
func (db *Database) GetWeeklyXP(guildID, userID string) (weeks []*models.WeeklyXP, err error) {
	if err = db.conn.Where("guild_id = ? AND user_id = ?", guildID, userID).Find(&weeks).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(weeks, func(i, j int) bool {
		return weekNumber(weeks[i].Week) < weekNumber(weeks[j].Week)
	})
	return weeks, nil
}

func weekNumber(key string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(key, "week_"))
	return n
}
