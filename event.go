package talaitbot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

func (bot *TalaitBot) initEvents() {
	bot.client.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		// middleware
		if i.Member == nil || i.GuildID == "" {
			if i.Type == discordgo.InteractionApplicationCommand || i.Type == discordgo.InteractionMessageComponent {
				bot.replyMsg(s, i, "This bot only works in a server.")
			}
			return
		}
		if i.Member.User != nil && i.Member.User.Bot {
			return
		}

		// handler
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handler, ok := bot.commands[i.ApplicationCommandData().Name]
			if !ok {
				bot.logCommand(i).Warn("Unknown command")
				return
			}
			bot.logCommand(i).Info("Received command")
			handler(s, i)
		case discordgo.InteractionMessageComponent:
			id, _, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
			handler, ok := bot.components[id]
			if !ok {
				bot.logCommand(i).Warn("Unknown component")
				return
			}
			bot.logCommand(i).Info("Received component interaction")
			handler(s, i)
		}
	})

	bot.client.AddHandler(bot.discordServerJoin)
	bot.client.AddHandler(bot.discordServerUpdate)
}

// logCommand returns a log entry annotated with the interaction's guild, user and command.
func (bot *TalaitBot) logCommand(i *discordgo.InteractionCreate) *logrus.Entry {
	fields := logrus.Fields{"guild": i.GuildID}
	if u := interactionUser(i); u != nil {
		fields["user"] = u.Username
		fields["user_id"] = u.ID
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		fields["command"] = i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		fields["component"] = i.MessageComponentData().CustomID
	}
	return bot.log.WithFields(fields)
}

func (bot *TalaitBot) discordServerJoin(s *discordgo.Session, e *discordgo.GuildCreate) {
	bot.log.Infof("Joined server: %s, id: %s, members: %d", e.Name, e.ID, e.MemberCount)
}

func (bot *TalaitBot) discordServerUpdate(s *discordgo.Session, e *discordgo.GuildUpdate) {
	bot.log.Infof("Server updated: %s", e.Name)
}
