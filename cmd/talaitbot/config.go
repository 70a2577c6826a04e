package main

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/talait/talaitbot"
	"github.com/talait/talaitbot/verifier"
)

func addFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to configuration file (defaults to ./talaitbot.toml if present)")
	flags.String("token", "", "Discord bot token")
	flags.String("app-id", "", "Discord application ID (defaults to the bot user ID)")
	flags.String("guild", "", "Register commands in this guild only instead of globally")
	flags.String("db-path", "talait.db", "Path to database file")
	flags.String("gemini-api-key", "", "Gemini API key (AI verification is disabled without it)")
	flags.String("gemini-model", verifier.DefaultModel, "Gemini model used for verification")
	flags.StringSlice("trainer-roles", strings.Split(talaitbot.DefaultTrainerRoles, ","), "Role names allowed to use trainer commands")
	flags.String("ticket-category", talaitbot.DefaultTicketCategory, "Category that holds submission tickets")
	flags.String("http-addr", "", "Address of the read-only HTTP API (disabled if empty)")
	flags.String("log-level", "info", "Log level")
	flags.String("log-dir", "logs", "Directory for bot.log, commands.log and errors.log (disabled if empty)")
	flags.Int("log-rotate-days", 3, "Start new log files every this many days")
	flags.Int("log-backups", 7, "Number of rotated log files to keep")
}

func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (cfg talaitbot.Config, err error) {
	// command line
	if err = v.BindPFlags(flags); err != nil {
		return
	}

	// env
	v.SetEnvPrefix(botName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err = v.BindEnv("token", "TALAIT_TOKEN", "DISCORD_TOKEN"); err != nil {
		return
	}
	if err = v.BindEnv("gemini-api-key", "TALAIT_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return
	}

	// config file
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(botName + "bot")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&cfg)
	return
}
