package talaitbot

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors.
const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22
	colorGold   = 0xf1c40f
	colorPurple = 0x9b59b6
)

// replyMsg replies to an interaction with an ephemeral message.
func (bot *TalaitBot) replyMsg(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) bool {
	return bot.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// replyPublic replies to an interaction with a message everyone in the channel can see.
func (bot *TalaitBot) replyPublic(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) bool {
	return bot.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: msg},
	})
}

func (bot *TalaitBot) replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) bool {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return bot.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// deferReply acknowledges an interaction that needs more than three seconds to answer.
func (bot *TalaitBot) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return bot.respond(s, i, resp)
}

func (bot *TalaitBot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *discordgo.InteractionResponse) bool {
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		bot.log.Errorln("Failed to respond to interaction:", err)
		return false
	}
	return true
}

// followupMsg sends a message after a deferred reply.
func (bot *TalaitBot) followupMsg(s *discordgo.Session, i *discordgo.InteractionCreate, msg string, ephemeral bool) {
	params := &discordgo.WebhookParams{Content: msg}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		bot.log.Errorln("Failed to send followup message:", err)
	}
}

func (bot *TalaitBot) followupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		bot.log.Errorln("Failed to send followup embed:", err)
	}
}

// sendDM sends a direct message embed to a user.
func (bot *TalaitBot) sendDM(s *discordgo.Session, userID string, embed *discordgo.MessageEmbed) bool {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		bot.log.Errorln("Failed to create private channel:", err)
		return false
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		bot.log.Warnln("Failed to send direct message:", err)
		return false
	}
	return true
}

// interactionUser returns the user who triggered the interaction, in a guild or a DM.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// getMemberName returns the member's nickname if present, username otherwise.
func getMemberName(gm *discordgo.Member) string {
	if gm.Nick != "" {
		return gm.Nick
	}
	return gm.User.Username
}

func guildName(s *discordgo.Session, guildID string) string {
	if g, err := s.State.Guild(guildID); err == nil {
		return g.Name
	}
	return "talAIt"
}

func channelName(s *discordgo.Session, channelID string) string {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch.Name
	}
	if ch, err := s.Channel(channelID); err == nil {
		return ch.Name
	}
	return ""
}

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func options(i *discordgo.InteractionCreate) optionMap {
	opts := i.ApplicationCommandData().Options
	m := make(optionMap, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func (o optionMap) String(name, def string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return def
}

func (o optionMap) Int(name string, def int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return def
}

// User resolves a user option from the interaction's resolved data.
func (o optionMap) User(i *discordgo.InteractionCreate, name string) *discordgo.User {
	opt, ok := o[name]
	if !ok {
		return nil
	}
	id, _ := opt.Value.(string)
	if r := i.ApplicationCommandData().Resolved; r != nil {
		if u, ok := r.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

// Discord rejects embeds whose field names or values are longer than this.
const (
	maxFieldName  = 256
	maxFieldValue = 1024
)

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:   truncate(name, maxFieldName),
		Value:  truncate(value, maxFieldValue),
		Inline: inline,
	}
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// relativeTime renders t with Discord's relative timestamp markup.
func relativeTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// formatDuration renders d as "1h 2m 3s", omitting leading zero units.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}
