package talaitbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
	"github.com/talait/talaitbot/scoring"
)

// closerInterval is how often expired challenges are looked for.
const closerInterval = 30 * time.Second

func difficultyColor(difficulty string) int {
	switch difficulty {
	case "Easy":
		return colorGreen
	case "Medium":
		return colorOrange
	case "Hard":
		return colorRed
	}
	return colorBlue
}

func languageLabel(key string) string {
	if l, ok := scoring.LookupLanguage(key); ok {
		return l.Emoji + " " + l.Name
	}
	return key
}

func (bot *TalaitBot) postChallengeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers can post challenges!") {
		return
	}
	opts := options(i)
	now := bot.now()
	minutes := opts.Int("duration", defaultDuration)
	challenge := &models.Challenge{
		GuildID:     i.GuildID,
		Title:       opts.String("title", ""),
		Description: opts.String("description", ""),
		Difficulty:  opts.String("difficulty", "Easy"),
		Language:    opts.String("language", "any"),
		Week:        models.ISOWeek(now),
		PostedBy:    interactionUser(i).ID,
		ChannelID:   i.ChannelID,
		PostedAt:    now,
		EndsAt:      now.Add(time.Duration(minutes) * time.Minute),
	}
	if err := bot.db.CreateChallenge(challenge); err != nil {
		bot.replyMsg(s, i, "❌ Failed to create the challenge.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎯 " + challenge.Title,
		Description: challenge.Description,
		Color:       difficultyColor(challenge.Difficulty),
		Fields: []*discordgo.MessageEmbedField{
			field("📊 Difficulty", challenge.Difficulty, true),
			field("💻 Language", languageLabel(challenge.Language), true),
			field("📅 Week", fmt.Sprintf("Week %d", challenge.Week), true),
			field("👤 Posted by", "<@"+challenge.PostedBy+">", true),
			field("⏰ Ends", relativeTime(challenge.EndsAt), true),
			field("📝 How to Submit", "Use `/submit` to create your private submission ticket!", false),
			field("🏆 Rewards", fmt.Sprintf("🥇 1st: %d XP\n🥈 2nd: %d XP\n🥉 3rd: %d XP\n✅ Participation: %d XP",
				scoring.FirstPlaceXP, scoring.SecondPlaceXP, scoring.ThirdPlaceXP, scoring.ParticipationXP), false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID) + " • " + now.Format("January 02, 2006")},
		Timestamp: timestamp(now),
	}
	bot.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "@everyone 🚨 **New Coding Challenge!**",
			Embeds:  []*discordgo.MessageEmbed{embed},
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
			},
		},
	})
	bot.logCommand(i).WithField("challenge", challenge.ID).Infof("Challenge created: %s", challenge.Title)
}

func (bot *TalaitBot) closeChallengeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers!") {
		return
	}
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No active challenge!")
		return
	}
	if err := bot.db.CloseChallenge(i.GuildID, challenge.ID); err != nil {
		bot.replyMsg(s, i, "❌ Failed to close the challenge.")
		return
	}
	bot.replyEmbed(s, i, bot.closedEmbed(s, challenge), false)
}

func (bot *TalaitBot) closedEmbed(s *discordgo.Session, challenge *models.Challenge) *discordgo.MessageEmbed {
	count, _ := bot.db.CountSubmissions(challenge.ID)
	return &discordgo.MessageEmbed{
		Title:       "🏁 Challenge Closed!",
		Description: fmt.Sprintf("**%s** is now closed.", challenge.Title),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			field("Total Submissions", fmt.Sprint(count), true),
			field("Week", fmt.Sprintf("Week %d", challenge.Week), true),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, challenge.GuildID)},
	}
}

func (bot *TalaitBot) extendChallengeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers!") {
		return
	}
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No active challenge!")
		return
	}
	minutes := options(i).Int("minutes", 0)
	challenge, err = bot.db.ExtendChallenge(i.GuildID, challenge.ID, time.Duration(minutes)*time.Minute, bot.now())
	if err != nil {
		bot.replyMsg(s, i, "❌ Failed to extend the challenge.")
		return
	}
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "⏰ Challenge Extended",
		Description: fmt.Sprintf("**%s** now ends %s.", challenge.Title, relativeTime(challenge.EndsAt)),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Added", fmt.Sprintf("%d minutes", minutes), true),
			field("Time Left", formatDuration(challenge.Remaining(bot.now())), true),
		},
	}, false)
}

func (bot *TalaitBot) challengeTimerCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No active challenge!")
		return
	}
	left := challenge.Remaining(bot.now())
	embed := &discordgo.MessageEmbed{
		Title:  "⏰ " + challenge.Title,
		Color:  colorBlue,
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID)},
	}
	switch {
	case challenge.EndsAt.IsZero():
		embed.Description = "This challenge has no time limit."
	case left == 0:
		embed.Description = "Time is up! The challenge closes shortly."
		embed.Color = colorRed
	default:
		embed.Description = fmt.Sprintf("**%s** remaining (ends %s)", formatDuration(left), relativeTime(challenge.EndsAt))
		if left < 5*time.Minute {
			embed.Color = colorOrange
		}
	}
	bot.replyEmbed(s, i, embed, false)
}

func (bot *TalaitBot) activeChallengeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No active challenge!")
		return
	}
	count, _ := bot.db.CountSubmissions(challenge.ID)
	embed := &discordgo.MessageEmbed{
		Title:       "🎯 " + challenge.Title,
		Description: challenge.Description,
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Difficulty", challenge.Difficulty, true),
			field("Language", languageLabel(challenge.Language), true),
			field("Week", fmt.Sprintf("Week %d", challenge.Week), true),
			field("Submissions", fmt.Sprint(count), true),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID)},
	}
	if !challenge.EndsAt.IsZero() {
		embed.Fields = append(embed.Fields, field("Ends", relativeTime(challenge.EndsAt), true))
	}
	bot.replyEmbed(s, i, embed, false)
}

type award struct {
	option string
	medal  string
	xp     int
	badge  string
}

var awards = []award{
	{"first", "🥇", scoring.FirstPlaceXP, "🥇 Winner"},
	{"second", "🥈", scoring.SecondPlaceXP, "🥈 2nd Place"},
	{"third", "🥉", scoring.ThirdPlaceXP, "🥉 3rd Place"},
}

func (bot *TalaitBot) awardWinnersCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Only trainers!") {
		return
	}
	challenge, err := bot.db.GetActiveOrLatestChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No challenge found!")
		return
	}
	opts := options(i)
	var winners []string
	for _, a := range awards {
		user := opts.User(i, a.option)
		if user == nil {
			continue
		}
		if err := bot.db.AwardWinner(i.GuildID, user.ID, user.Username, a.xp, challenge.WeekKey(), a.badge); err != nil {
			bot.replyMsg(s, i, "❌ Failed to award XP.")
			return
		}
		winners = append(winners, fmt.Sprintf("%s <@%s> - **%d XP**", a.medal, user.ID, a.xp))
	}
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🎉 Winners Announced!",
		Description: fmt.Sprintf("**%s** - Week %d\n\n%s", challenge.Title, challenge.Week, strings.Join(winners, "\n")),
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID) + " • Congratulations! 🎊"},
	}, false)
}

func (bot *TalaitBot) languagesCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var b strings.Builder
	for _, l := range scoring.Languages {
		if l.Key == "any" {
			continue
		}
		fmt.Fprintf(&b, "%s **%s** `%s`\n", l.Emoji, l.Name, strings.Join(l.Extensions, " "))
	}
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "💻 Supported Languages",
		Description: b.String(),
		Color:       colorPurple,
		Fields: []*discordgo.MessageEmbedField{
			field("🔄 Any Language", "Challenges posted with **Any** accept every language above.", false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Wrap your code in ```lang ... ``` blocks for best detection"},
	}, true)
}

// CloseExpired closes every active challenge whose deadline has passed and
// returns the challenges it closed.
func (bot *TalaitBot) CloseExpired(now time.Time) ([]*models.Challenge, error) {
	expired, err := bot.db.GetExpiredChallenges(now)
	if err != nil {
		return nil, err
	}
	var closed []*models.Challenge
	for _, c := range expired {
		if err := bot.db.CloseChallenge(c.GuildID, c.ID); err != nil {
			if errors.Is(err, database.ErrChallengeNotFound) {
				continue
			}
			return closed, err
		}
		c.Status = models.ChallengeClosed
		closed = append(closed, c)
		bot.log.WithField("guild", c.GuildID).Infof("Challenge %d closed automatically: %s", c.ID, c.Title)
	}
	return closed, nil
}

// RunChallengeCloser closes expired challenges and announces them in the
// channel they were posted in, until ctx is done.
func (bot *TalaitBot) RunChallengeCloser(ctx context.Context) error {
	ticker := time.NewTicker(closerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		closed, err := bot.CloseExpired(bot.now())
		if err != nil {
			bot.log.Errorln("Failed to close expired challenges:", err)
		}
		for _, c := range closed {
			if c.ChannelID == "" {
				continue
			}
			embed := bot.closedEmbed(bot.client, c)
			embed.Description = fmt.Sprintf("⏰ Time is up! **%s** is now closed.", c.Title)
			if _, err := bot.client.ChannelMessageSendEmbed(c.ChannelID, embed); err != nil {
				bot.log.Errorln("Failed to announce closed challenge:", err)
			}
		}
	}
}
