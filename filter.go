package talaitbot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

var permAdmin int64 = discordgo.PermissionAdministrator

// hasTrainerRole reports whether any of roleNames is one of the trainer roles.
// Names are compared case-insensitively.
func hasTrainerRole(roleNames, trainerRoles []string) bool {
	for _, name := range roleNames {
		for _, trainer := range trainerRoles {
			if strings.EqualFold(strings.TrimSpace(trainer), name) {
				return true
			}
		}
	}
	return false
}

// isTrainer checks the interaction member's roles against the configured trainer roles.
func (bot *TalaitBot) isTrainer(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return hasTrainerRole(bot.memberRoleNames(s, i.GuildID, i.Member), bot.cfg.TrainerRoles)
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func (bot *TalaitBot) memberRoleNames(s *discordgo.Session, guildID string, gm *discordgo.Member) []string {
	names := make([]string, 0, len(gm.Roles))
	var roles []*discordgo.Role
	for _, id := range gm.Roles {
		if role, err := s.State.Role(guildID, id); err == nil {
			names = append(names, role.Name)
			continue
		}
		if roles == nil {
			var err error
			if roles, err = s.GuildRoles(guildID); err != nil {
				bot.log.Errorln("Failed to get roles:", err)
				return names
			}
		}
		for _, role := range roles {
			if role.ID == id {
				names = append(names, role.Name)
			}
		}
	}
	return names
}

// trainerRoleIDs returns the IDs of the guild's trainer roles.
func (bot *TalaitBot) trainerRoleIDs(s *discordgo.Session, guildID string) []string {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		bot.log.Errorln("Failed to get roles:", err)
		return nil
	}
	var ids []string
	for _, role := range roles {
		if hasTrainerRole([]string{role.Name}, bot.cfg.TrainerRoles) {
			ids = append(ids, role.ID)
		}
	}
	return ids
}

// requireTrainer replies with denied and logs the attempt unless the member is a trainer.
func (bot *TalaitBot) requireTrainer(s *discordgo.Session, i *discordgo.InteractionCreate, denied string) bool {
	if bot.isTrainer(s, i) {
		return true
	}
	bot.logCommand(i).Warn("Unauthorized command attempt")
	bot.replyMsg(s, i, denied)
	return false
}

func (bot *TalaitBot) requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, denied string) bool {
	if isAdmin(i) {
		return true
	}
	bot.logCommand(i).Warn("Unauthorized command attempt")
	bot.replyMsg(s, i, denied)
	return false
}
