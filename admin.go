package talaitbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
)

const (
	listUsersSize = 25
	resetInterval = time.Hour
)

func (bot *TalaitBot) addXPCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers can use this!") {
		return
	}
	opts := options(i)
	user := opts.User(i, "user")
	amount := opts.Int("amount", 0)
	if user == nil || amount <= 0 {
		bot.replyMsg(s, i, "❌ Amount must be positive!")
		return
	}
	week := models.WeekKey(models.ISOWeek(bot.now()))
	if err := bot.db.AddXP(i.GuildID, user.ID, user.Username, amount, week); err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	member, err := bot.db.GetMember(i.GuildID, user.ID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	bot.logCommand(i).WithField("target", user.Username).Infof("Added %d XP, new XP %d", amount, member.XP)
	bot.replyPublic(s, i, fmt.Sprintf("✅ Added %d XP to <@%s>. Current XP: %d", amount, user.ID, member.XP))
}

func (bot *TalaitBot) removeXPCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers can use this!") {
		return
	}
	opts := options(i)
	user := opts.User(i, "user")
	amount := opts.Int("amount", 0)
	if user == nil || amount <= 0 {
		bot.replyMsg(s, i, "❌ Amount must be positive!")
		return
	}
	member, err := bot.db.RemoveXP(i.GuildID, user.ID, amount)
	if errors.Is(err, database.ErrMemberNotFound) {
		bot.replyMsg(s, i, "❌ User not found!")
		return
	} else if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	bot.logCommand(i).WithField("target", user.Username).Infof("Removed %d XP, new XP %d", amount, member.XP)
	bot.replyPublic(s, i, fmt.Sprintf("✅ Removed %d XP from <@%s>. Current XP: %d", amount, user.ID, member.XP))
}

func (bot *TalaitBot) listUsersCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Trainers only!") {
		return
	}
	members, err := bot.db.GetLeaderboard(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	if len(members) == 0 {
		bot.replyMsg(s, i, "❌ No users!")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "👥 All Users in " + guildName(s, i.GuildID),
		Description: fmt.Sprintf("Total users: %d", len(members)),
		Color:       colorBlue,
	}
	for idx, m := range members {
		if idx == listUsersSize {
			break
		}
		embed.Fields = append(embed.Fields, field(fmt.Sprintf("%d. %s", idx+1, m.Username), fmt.Sprintf("%d XP", m.XP), true))
	}
	bot.replyEmbed(s, i, embed, true)
}

func (bot *TalaitBot) resetMonthCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireAdmin(s, i, "❌ Admins only!") {
		return
	}
	month := models.MonthKey(bot.now())
	if err := bot.db.ResetMonth(i.GuildID, month); err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	bot.logCommand(i).WithField("month", month).Info("Manual monthly reset")
	bot.replyPublic(s, i, "✅ Monthly leaderboard reset! Data saved to Hall of Fame for "+month)
}

// CheckMonthlyReset resets the leaderboard of every guild whose last reset
// happened in an earlier month. The archived leaderboard is stored under the
// previous month. Guilds seen for the first time are only marked.
func (bot *TalaitBot) CheckMonthlyReset(now time.Time) error {
	guilds, err := bot.db.Guilds()
	if err != nil {
		return err
	}
	current := models.MonthKey(now)
	var errs []error
	for _, guild := range guilds {
		last, err := bot.db.LastReset(guild)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if last == current {
			continue
		}
		log := bot.log.WithField("guild", guild)
		if last != "" {
			archive := models.PreviousMonthKey(now)
			if err := bot.db.ResetMonth(guild, archive); err != nil {
				errs = append(errs, err)
				continue
			}
			log.Infof("Monthly reset completed, archived %s", archive)
		}
		if err := bot.db.MarkReset(guild, current); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunMonthlyReset checks for a new month on start and then every hour until ctx is done.
func (bot *TalaitBot) RunMonthlyReset(ctx context.Context) error {
	ticker := time.NewTicker(resetInterval)
	defer ticker.Stop()
	for {
		if err := bot.CheckMonthlyReset(bot.now()); err != nil {
			bot.log.Errorln("Monthly reset failed:", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
