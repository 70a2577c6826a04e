package talaitbot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/models"
	"github.com/talait/talaitbot/scoring"
)

type command func(s *discordgo.Session, i *discordgo.InteractionCreate)

type commandMap map[string]command

// Custom IDs of message components. Close confirmations append ":<token>".
const (
	submitButtonID  = "submit_solution"
	closeConfirmID  = "close_confirm"
	closeCancelID   = "close_cancel"
	maxDuration     = 1440
	defaultDuration = 30
)

func (bot *TalaitBot) initCommands() {
	bot.commands = commandMap{
		// challenges
		"postchallenge":   bot.postChallengeCommand,
		"closechallenge":  bot.closeChallengeCommand,
		"extendchallenge": bot.extendChallengeCommand,
		"challengetimer":  bot.challengeTimerCommand,
		"activechallenge": bot.activeChallengeCommand,
		"awardwinners":    bot.awardWinnersCommand,
		"languages":       bot.languagesCommand,
		// tickets
		"submit":      bot.submitCommand,
		"closeticket": bot.closeTicketCommand,
		"listtickets": bot.listTicketsCommand,
		"feedback":    bot.feedbackCommand,
		// leaderboard
		"leaderboard": bot.leaderboardCommand,
		"halloffame":  bot.hallOfFameCommand,
		"stats":       bot.statsCommand,
		// admin
		"addxp":      bot.addXPCommand,
		"removexp":   bot.removeXPCommand,
		"listusers":  bot.listUsersCommand,
		"resetmonth": bot.resetMonthCommand,
		// pomodoro
		"pomodoro":             bot.pomodoroCommand,
		"pomodoro-status":      bot.pomodoroStatusCommand,
		"pomodoro-pause":       bot.pomodoroPauseCommand,
		"pomodoro-resume":      bot.pomodoroResumeCommand,
		"pomodoro-stop":        bot.pomodoroStopCommand,
		"pomodoro-skip":        bot.pomodoroSkipCommand,
		"pomodoro-focusing":    bot.pomodoroFocusingCommand,
		"pomodoro-onbreak":     bot.pomodoroOnBreakCommand,
		"pomodoro-leaderboard": bot.pomodoroLeaderboardCommand,
		"pomodoro-help":        bot.pomodoroHelpCommand,
		// help
		"help":       bot.helpCommand,
		"about":      bot.aboutCommand,
		"quickstart": bot.quickstartCommand,
		"commands":   bot.commandsCommand,
	}
	bot.components = commandMap{
		submitButtonID: bot.submitButton,
		closeConfirmID: bot.closeConfirmButton,
		closeCancelID:  bot.closeCancelButton,
	}
}

func minValue(v float64) *float64 {
	return &v
}

func difficultyChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Difficulties))
	for _, d := range models.Difficulties {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: d, Value: d})
	}
	return choices
}

func languageChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(scoring.Languages))
	for _, l := range scoring.Languages {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  l.Emoji + " " + l.Name,
			Value: l.Key,
		})
	}
	return choices
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func intOption(name, description string, required bool, min, max float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    minValue(min),
		MaxValue:    max,
	}
}

// GetCommands returns every slash command the bot registers.
func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "postchallenge",
			Description: "Post a new coding challenge",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Challenge title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Challenge description", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "difficulty", Description: "Difficulty level", Required: true, Choices: difficultyChoices()},
				{Type: discordgo.ApplicationCommandOptionString, Name: "language", Description: "Programming language (default: any)", Choices: languageChoices()},
				intOption("duration", "Minutes until the challenge closes (default: 30)", false, 1, maxDuration),
			},
		},
		{Name: "closechallenge", Description: "Close the current challenge"},
		{
			Name:        "extendchallenge",
			Description: "Add more minutes to the current challenge",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("minutes", "Minutes to add", true, 1, maxDuration),
			},
		},
		{Name: "challengetimer", Description: "Check the time remaining on the current challenge"},
		{Name: "activechallenge", Description: "View the current active challenge"},
		{
			Name:        "awardwinners",
			Description: "Award XP to the top 3 winners",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("first", "1st place winner", true),
				userOption("second", "2nd place winner (optional)", false),
				userOption("third", "3rd place winner (optional)", false),
			},
		},
		{Name: "languages", Description: "View supported programming languages"},

		{Name: "submit", Description: "Create a private ticket to submit your solution"},
		{Name: "closeticket", Description: "Close your submission ticket"},
		{Name: "listtickets", Description: "List all tickets (Trainers)"},
		{
			Name:        "feedback",
			Description: "Give feedback (Trainers)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Your feedback", Required: true},
			},
		},

		{Name: "leaderboard", Description: "View the monthly leaderboard"},
		{Name: "halloffame", Description: "View past monthly champions"},
		{
			Name:        "stats",
			Description: "View your or another user's stats",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to look up", false),
			},
		},

		{
			Name:        "addxp",
			Description: "Give XP to a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "The user to give XP to", true),
				intOption("amount", "Amount of XP to add", true, 1, 1000),
			},
		},
		{
			Name:        "removexp",
			Description: "Remove XP from a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "The user to remove XP from", true),
				intOption("amount", "Amount of XP to remove", true, 1, 1000),
			},
		},
		{Name: "listusers", Description: "List all users in the leaderboard"},
		{
			Name:                     "resetmonth",
			Description:              "Manually reset the monthly leaderboard (Admin only)",
			DefaultMemberPermissions: &permAdmin,
		},

		{
			Name:        "pomodoro",
			Description: "Start a Pomodoro timer with live updates",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("work", "Work duration in minutes (default: 25)", false, 1, 120),
				intOption("short_break", "Short break duration (default: 5)", false, 1, 60),
				intOption("long_break", "Long break duration (default: 15)", false, 1, 60),
				intOption("sessions", "Sessions until long break (default: 4)", false, 1, 10),
			},
		},
		{Name: "pomodoro-status", Description: "Check your Pomodoro timer status"},
		{Name: "pomodoro-pause", Description: "Pause your Pomodoro timer"},
		{Name: "pomodoro-resume", Description: "Resume your Pomodoro timer"},
		{Name: "pomodoro-stop", Description: "Stop your Pomodoro timer completely"},
		{Name: "pomodoro-skip", Description: "Skip to the next Pomodoro phase"},
		{Name: "pomodoro-focusing", Description: "View all users currently focusing"},
		{Name: "pomodoro-onbreak", Description: "View all users currently on break"},
		{Name: "pomodoro-leaderboard", Description: "View Pomodoro leaderboard"},
		{Name: "pomodoro-help", Description: "Learn how to use Pomodoro timers"},

		{Name: "help", Description: "Show all available commands and how to use the bot"},
		{Name: "about", Description: "Learn about talAIt and the bot features"},
		{Name: "quickstart", Description: "Quick start guide for new users"},
		{Name: "commands", Description: "View all commands organized by role"},
	}
}
