package talaitbot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
)

const (
	leaderboardSize  = 10
	hallOfFameMonths = 6
	recentWeeks      = 4
)

var medals = []string{"🥇", "🥈", "🥉"}

func rankLabel(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return fmt.Sprintf("**%d.**", rank)
}

// LeaderboardLines formats the top members of a leaderboard, one line per member.
func LeaderboardLines(members []*models.Member, n int) string {
	if len(members) > n {
		members = members[:n]
	}
	lines := make([]string, 0, len(members))
	for idx, m := range members {
		lines = append(lines, fmt.Sprintf("%s %s - **%d XP**", rankLabel(idx+1), m.Username, m.XP))
	}
	return strings.Join(lines, "\n")
}

func (bot *TalaitBot) leaderboardCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	members, err := bot.db.GetLeaderboard(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	if len(members) == 0 {
		bot.replyMsg(s, i, "📊 No one has earned XP yet. Use `/submit` to get started!")
		return
	}
	now := bot.now()
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🏆 Monthly Leaderboard - " + now.Format("January 2006"),
		Description: LeaderboardLines(members, leaderboardSize),
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s • %d participants • Resets on the 1st", guildName(s, i.GuildID), len(members))},
		Timestamp:   timestamp(now),
	}, false)
}

func (bot *TalaitBot) hallOfFameCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	months, err := bot.db.GetHallOfFame(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	if len(months) == 0 {
		bot.replyMsg(s, i, "🏛️ The Hall of Fame is empty. Champions are recorded at the end of each month!")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:  "🏛️ Hall of Fame",
		Color:  colorPurple,
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID)},
	}
	for idx, month := range months {
		if idx == hallOfFameMonths {
			break
		}
		var lines []string
		for _, e := range month.Entries {
			if e.Rank > len(medals) {
				break
			}
			lines = append(lines, fmt.Sprintf("%s %s - %d XP", rankLabel(e.Rank), e.Username, e.XP))
		}
		if len(lines) == 0 {
			lines = append(lines, "No participants")
		}
		embed.Fields = append(embed.Fields, field("📅 "+month.Month, strings.Join(lines, "\n"), false))
	}
	bot.replyEmbed(s, i, embed, false)
}

func (bot *TalaitBot) statsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := options(i).User(i, "user")
	if user == nil {
		user = interactionUser(i)
	}
	member, err := bot.db.GetMember(i.GuildID, user.ID)
	if errors.Is(err, database.ErrMemberNotFound) {
		bot.replyMsg(s, i, "📊 No stats yet for <@"+user.ID+">.")
		return
	} else if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	rank, _ := bot.db.GetRank(i.GuildID, user.ID)
	badges, _ := bot.db.GetBadges(i.GuildID, user.ID)
	weeks, _ := bot.db.GetWeeklyXP(i.GuildID, user.ID)

	rankText := "Unranked"
	if rank > 0 {
		rankText = fmt.Sprintf("#%d", rank)
	}
	badgeText := "None yet"
	if len(badges) > 0 {
		badgeText = strings.Join(badges, "\n")
	}
	weekText := "No activity yet"
	if len(weeks) > 0 {
		if len(weeks) > recentWeeks {
			weeks = weeks[len(weeks)-recentWeeks:]
		}
		lines := make([]string, 0, len(weeks))
		for _, w := range weeks {
			lines = append(lines, fmt.Sprintf("%s: %d XP", strings.Replace(w.Week, "week_", "Week ", 1), w.XP))
		}
		weekText = strings.Join(lines, "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Stats for " + member.Username,
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("⭐ Monthly XP", fmt.Sprint(member.XP), true),
			field("🌟 Total XP", fmt.Sprint(member.TotalXP), true),
			field("🏆 Rank", rankText, true),
			field("🎖️ Badges", badgeText, false),
			field("📅 Recent Weeks", weekText, false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID)},
	}
	if avatar := user.AvatarURL(""); avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	bot.replyEmbed(s, i, embed, false)
}
