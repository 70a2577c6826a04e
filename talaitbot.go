package talaitbot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/pomodoro"
	"github.com/talait/talaitbot/scoring"
	"github.com/talait/talaitbot/verifier"
)

const (
	DefaultTrainerRoles   = "formateur,admin,moderator"
	DefaultTicketCategory = "📝 Submissions"
)

type Config struct {
	Token          string   `mapstructure:"token"`
	AppID          string   `mapstructure:"app-id"`
	Guild          string   `mapstructure:"guild"`
	DBPath         string   `mapstructure:"db-path"`
	GeminiAPIKey   string   `mapstructure:"gemini-api-key"`
	GeminiModel    string   `mapstructure:"gemini-model"`
	TrainerRoles   []string `mapstructure:"trainer-roles"`
	TicketCategory string   `mapstructure:"ticket-category"`
	HTTPAddr       string   `mapstructure:"http-addr"`
	LogLevel       string   `mapstructure:"log-level"`
	LogDir         string   `mapstructure:"log-dir"`
	LogRotateDays  int      `mapstructure:"log-rotate-days"`
	LogBackups     int      `mapstructure:"log-backups"`
}

type TalaitBot struct {
	cfg      Config
	client   *discordgo.Session
	db       *database.Database
	log      *logrus.Logger
	analyzer *scoring.Analyzer
	verifier verifier.Verifier
	timers   *pomodoro.Manager
	confirms *confirmations
	now      func() time.Time

	commands   commandMap
	components commandMap
}

func New(cfg Config, log *logrus.Logger, db *database.Database, v verifier.Verifier) (bot *TalaitBot, err error) {
	if cfg.TicketCategory == "" {
		cfg.TicketCategory = DefaultTicketCategory
	}
	bot = &TalaitBot{
		cfg:      cfg,
		db:       db,
		log:      log,
		analyzer: scoring.NewAnalyzer(),
		verifier: v,
		confirms: newConfirmations(),
		now:      time.Now,
	}
	bot.client, err = discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	bot.client.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	bot.timers = pomodoro.NewManager(&timerNotifier{bot: bot}, log)

	bot.initCommands()
	bot.initEvents()

	bot.client.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		bot.log.Infof("%s is now online in %d server(s)", r.User.Username, len(r.Guilds))
		if err := s.UpdateWatchStatus(0, "talAIt challenges | /help"); err != nil {
			bot.log.Errorln("Failed to update status:", err)
		}
	})

	return bot, nil
}

// Connect opens the gateway session and registers the slash commands.
func (bot *TalaitBot) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bot.client.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	appID := bot.cfg.AppID
	if appID == "" {
		appID = bot.client.State.User.ID
	}
	cmds, err := bot.client.ApplicationCommandBulkOverwrite(appID, bot.cfg.Guild, GetCommands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	bot.log.Infof("Registered %d slash command(s)", len(cmds))
	return nil
}

func (bot *TalaitBot) Disconnect() error {
	bot.timers.Close()
	return bot.client.Close()
}

func (bot *TalaitBot) DB() *database.Database {
	return bot.db
}
