package talaitbot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
	"github.com/talait/talaitbot/pomodoro"
	"github.com/talait/talaitbot/scoring"
	"github.com/talait/talaitbot/verifier"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *database.Database

func TestMain(m *testing.M) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var err error
	db, err = database.OpenDatabase("file::memory:?cache=shared", logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ret := m.Run()
	db.Close()
	os.Exit(ret)
}

func testBot(now time.Time) *TalaitBot {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &TalaitBot{
		cfg: Config{TrainerRoles: strings.Split(DefaultTrainerRoles, ",")},
		db:  db,
		log: logger,
		now: func() time.Time { return now },
	}
}

func TestHasTrainerRole(t *testing.T) {
	roles := strings.Split(DefaultTrainerRoles, ",")
	assert.True(t, hasTrainerRole([]string{"Student", "Formateur"}, roles))
	assert.True(t, hasTrainerRole([]string{"MODERATOR"}, roles))
	assert.False(t, hasTrainerRole([]string{"Student"}, roles))
	assert.False(t, hasTrainerRole(nil, roles))
	assert.True(t, hasTrainerRole([]string{"mentor"}, []string{" mentor "}))
}

func TestGetCommands(t *testing.T) {
	bot := &TalaitBot{}
	bot.initCommands()

	seen := make(map[string]bool)
	for _, cmd := range GetCommands() {
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
		assert.Contains(t, bot.commands, cmd.Name)
		assert.LessOrEqual(t, len(cmd.Name), 32)
		assert.Equal(t, strings.ToLower(cmd.Name), cmd.Name)
		assert.NotEmpty(t, cmd.Description)
		assert.LessOrEqual(t, len([]rune(cmd.Description)), 100, cmd.Name)

		optional := false
		for _, opt := range cmd.Options {
			if !opt.Required {
				optional = true
			} else {
				assert.False(t, optional, "required option %s of %s follows an optional one", opt.Name, cmd.Name)
			}
			assert.LessOrEqual(t, len(opt.Choices), 25)
		}
	}
	assert.Len(t, bot.commands, len(seen))
	assert.Len(t, bot.components, 3)
}

func TestTicketChannelName(t *testing.T) {
	assert.Equal(t, "ticket-john-doe-w7", TicketChannelName("John Doe", 7))
	assert.Equal(t, "ticket-alice-w42", TicketChannelName("alice", 42))
}

func TestExtractCode(t *testing.T) {
	var fetched []string
	fetch := func(url string) ([]byte, error) {
		fetched = append(fetched, url)
		if url == "broken" {
			return nil, errors.New("boom")
		}
		return []byte("package main\n"), nil
	}
	// newest first, as returned by the channel history
	msgs := []*discordgo.Message{
		{Content: "Here is my fix:\n```py\nprint('b')\n```"},
		{
			Content: "```python\nprint('a')\n```",
			Attachments: []*discordgo.MessageAttachment{
				{Filename: "extra.go", URL: "u1"},
				{Filename: "image.png", URL: "u2"},
				{Filename: "notes.txt", URL: "broken"},
			},
		},
		{Content: "I will post my code below"},
	}

	code, lang := ExtractCode(msgs, fetch)
	assert.Equal(t, "print('a')\n\npackage main\n\nprint('b')", code)
	assert.Equal(t, "python", lang)
	assert.Equal(t, []string{"u1", "broken"}, fetched)
}

func TestExtractCodeDetectsLanguage(t *testing.T) {
	noFetch := func(string) ([]byte, error) { return nil, errors.New("unexpected fetch") }

	code, lang := ExtractCode([]*discordgo.Message{{Content: "```\nfunction f() {}\n```"}}, noFetch)
	assert.Equal(t, "function f() {}", code)
	assert.Equal(t, "javascript", lang)

	code, lang = ExtractCode([]*discordgo.Message{{Content: "```golang\nfunc main() {}\n```"}}, noFetch)
	assert.Equal(t, "func main() {}", code)
	assert.Equal(t, "go", lang)

	code, lang = ExtractCode([]*discordgo.Message{{Content: "no code here"}}, noFetch)
	assert.Empty(t, code)
	assert.Empty(t, lang)
}

func TestConfirmations(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newConfirmations()

	token := c.add(pendingClose{ticketID: 7, userID: "u"}, now)
	require.NotEmpty(t, token)
	p, ok := c.take(token, now.Add(30*time.Second))
	require.True(t, ok)
	assert.Equal(t, uint(7), p.ticketID)
	_, ok = c.take(token, now)
	assert.False(t, ok, "tokens are single use")

	expired := c.add(pendingClose{ticketID: 8}, now)
	_, ok = c.take(expired, now.Add(confirmExpiry+time.Second))
	assert.False(t, ok)

	stale := c.add(pendingClose{ticketID: 9}, now)
	c.add(pendingClose{ticketID: 10}, now.Add(2*confirmExpiry))
	c.mu.Lock()
	_, kept := c.pending[stale]
	c.mu.Unlock()
	assert.False(t, kept, "expired confirmations are purged")
}

func fieldNamed(embed *discordgo.MessageEmbed, prefix string) *discordgo.MessageEmbedField {
	for _, f := range embed.Fields {
		if strings.HasPrefix(f.Name, prefix) {
			return f
		}
	}
	return nil
}

func TestReviewEmbed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	result := verifier.Result{
		SolvesChallenge:   true,
		CorrectnessScore:  90,
		LogicScore:        85,
		CompletenessScore: 89,
		OverallScore:      88,
		Feedback:          "Nice work",
		Issues:            []string{"a", "b", "c", "d"},
	}
	metrics := scoring.Metrics{Correctness: 100, Readability: 70, Efficiency: 80, Overall: 83}
	xp := scoring.XPResult{Total: 9, Breakdown: "🎯 Base: +2 XP"}

	embed := ReviewEmbed("python", metrics, result, xp, 2, "talAIt", now)
	assert.Equal(t, colorGreen, embed.Color)
	assert.Equal(t, "Your Python solution has been analyzed", embed.Description)
	assert.Equal(t, "talAIt • Submission #2", embed.Footer.Text)

	verification := fieldNamed(embed, "✅ Challenge Verification")
	require.NotNil(t, verification)
	assert.Contains(t, verification.Value, "**AI Score:** 88/100")

	issues := fieldNamed(embed, "⚠️ Issues")
	require.NotNil(t, issues)
	assert.Equal(t, "• a\n• b\n• c", issues.Value)
	assert.Nil(t, fieldNamed(embed, "💪 Strengths"))

	award := fieldNamed(embed, "🌟 XP Awarded")
	require.NotNil(t, award)
	assert.Equal(t, "🌟 XP Awarded: **9 XP**", award.Name)

	failed := ReviewEmbed("go", metrics, verifier.BasicResult(), scoring.XPResult{Total: 1}, 1, "talAIt", now)
	assert.Equal(t, colorRed, failed.Color)
	assert.NotNil(t, fieldNamed(failed, "❌ Challenge Verification"))
	assert.NotNil(t, fieldNamed(failed, "💧 XP Awarded"))
}

func TestCloseExpired(t *testing.T) {
	const guild = "closer"
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := &models.Challenge{GuildID: guild, Title: "old", PostedAt: now.Add(-time.Hour), EndsAt: now.Add(-time.Minute)}
	running := &models.Challenge{GuildID: guild, Title: "running", PostedAt: now, EndsAt: now.Add(time.Hour)}
	unlimited := &models.Challenge{GuildID: guild, Title: "unlimited", PostedAt: now}
	for _, c := range []*models.Challenge{expired, running, unlimited} {
		require.NoError(t, db.CreateChallenge(c))
	}

	bot := testBot(now)
	closed, err := bot.CloseExpired(now)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, expired.ID, closed[0].ID)
	assert.Equal(t, models.ChallengeClosed, closed[0].Status)

	stored, err := db.GetChallenge(guild, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeClosed, stored.Status)
	active, err := db.GetActiveChallenge(guild)
	require.NoError(t, err)
	assert.Equal(t, unlimited.ID, active.ID)

	closed, err = bot.CloseExpired(now)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestCheckMonthlyReset(t *testing.T) {
	const guild = "monthly"
	march := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 1, 0, 30, 0, 0, time.UTC)
	require.NoError(t, db.AddXP(guild, "a", "alice", 10, "week_10"))

	bot := testBot(march)
	require.NoError(t, bot.CheckMonthlyReset(march))
	member, err := db.GetMember(guild, "a")
	require.NoError(t, err)
	assert.Equal(t, 10, member.XP, "first check only marks the month")
	last, err := db.LastReset(guild)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", last)

	require.NoError(t, bot.CheckMonthlyReset(april))
	member, err = db.GetMember(guild, "a")
	require.NoError(t, err)
	assert.Zero(t, member.XP)
	assert.Equal(t, 10, member.TotalXP)

	months, err := db.GetHallOfFame(guild)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, "2025-03", months[0].Month)
	require.Len(t, months[0].Entries, 1)
	assert.Equal(t, 10, months[0].Entries[0].XP)

	require.NoError(t, db.AddXP(guild, "a", "alice", 5, "week_14"))
	require.NoError(t, bot.CheckMonthlyReset(april.Add(time.Hour)))
	member, err = db.GetMember(guild, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, member.XP, "a month is reset only once")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "2m 5s", formatDuration(2*time.Minute+5*time.Second+300*time.Millisecond))
	assert.Equal(t, "1h 0m 30s", formatDuration(time.Hour+30*time.Second))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestLeaderboardLines(t *testing.T) {
	members := []*models.Member{
		{Username: "a", XP: 30},
		{Username: "b", XP: 20},
		{Username: "c", XP: 10},
		{Username: "d", XP: 5},
	}
	assert.Equal(t, "🥇 a - **30 XP**\n🥈 b - **20 XP**\n🥉 c - **10 XP**\n**4.** d - **5 XP**", LeaderboardLines(members, 10))
	assert.Equal(t, "🥇 a - **30 XP**", LeaderboardLines(members, 1))
}

func TestCommandsEmbed(t *testing.T) {
	assert.Len(t, CommandsEmbed("g", false, false).Fields, 1)
	assert.Len(t, CommandsEmbed("g", true, false).Fields, 2)
	embed := CommandsEmbed("g", true, true)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "⚙️ Admin Commands", embed.Fields[2].Name)
	assert.Equal(t, "g • Use /help for detailed descriptions", embed.Footer.Text)
}

func TestTicketInstructions(t *testing.T) {
	out, err := render(ticketInstructions, ticketData{
		UserID:     "42",
		Title:      "FizzBuzz",
		Difficulty: "Easy",
		Language:   "🐍 Python",
		CodeBlock:  "python",
		Extensions: ".py",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Welcome <@42>!"))
	assert.Contains(t, out, "**Challenge:** FizzBuzz")
	assert.Contains(t, out, fence+"python\n")
	assert.Contains(t, out, "or attach a file (.py)")
}

func TestRewardsHelp(t *testing.T) {
	out, err := render(rewardsHelp, rewardsData{scoring.FirstPlaceXP, scoring.SecondPlaceXP, scoring.ThirdPlaceXP, scoring.ParticipationXP})
	require.NoError(t, err)
	assert.Contains(t, out, "🥇 **1st Place:** 10 XP + Winner Badge")
	assert.Contains(t, out, "✅ **Participation:** 2 XP")
}

func TestTimerEmbed(t *testing.T) {
	st := pomodoro.Status{
		UserID:   "42",
		Session:  3,
		Phase:    pomodoro.ShortBreak,
		Running:  true,
		Left:     2*time.Minute + 5*time.Second,
		Progress: 0.5,
	}
	embed := timerEmbed(st)
	assert.Equal(t, "Break Time ☕", embed.Title)
	assert.Equal(t, colorOrange, embed.Color)
	assert.Equal(t, "<@42> - Session #3", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "```02:05```\n"+pomodoro.Bar(0.5), embed.Fields[0].Value)

	st.Phase = pomodoro.Work
	st.Paused = true
	assert.Equal(t, "Focus Time 🍅 (paused)", timerEmbed(st).Title)
	assert.Equal(t, "⏸️", statusEmoji(st))
}

func TestPomodoroError(t *testing.T) {
	assert.Equal(t, "❌ Sessions must be between 1-10!", pomodoroError(pomodoro.ErrSessionsRange))
	assert.Equal(t, "❌ Timer is not paused!", pomodoroError(pomodoro.ErrNotPaused))
	assert.Equal(t, "❌ Timer is paused! Use `/pomodoro-resume` first.", pomodoroError(pomodoro.ErrPaused))
	assert.Equal(t, "❌ You don't have an active timer!", pomodoroError(pomodoro.ErrNoTimer))
	assert.Equal(t, "❌ Error: boom", pomodoroError(errors.New("boom")))
}

func TestDifficultyChoices(t *testing.T) {
	var difficulty *discordgo.ApplicationCommandOption
	for _, cmd := range GetCommands() {
		if cmd.Name != "postchallenge" {
			continue
		}
		for _, opt := range cmd.Options {
			if opt.Name == "difficulty" {
				difficulty = opt
			}
		}
	}
	require.NotNil(t, difficulty)
	values := make([]string, 0, len(difficulty.Choices))
	for _, c := range difficulty.Choices {
		values = append(values, c.Value.(string))
		assert.NotEqual(t, colorBlue, difficultyColor(c.Name), c.Name)
	}
	assert.Equal(t, models.Difficulties, values)
}

func TestReviewEmbedFieldLimits(t *testing.T) {
	long := strings.Repeat("x", 2000)
	result := verifier.Result{
		SolvesChallenge: true,
		OverallScore:    70,
		Feedback:        long,
		Issues:          []string{long, long, long},
		Strengths:       []string{long},
	}
	metrics := scoring.Metrics{Overall: 70, Suggestions: []string{long, long}}
	xp := scoring.XPResult{Total: 6, Breakdown: long}

	embed := ReviewEmbed("python", metrics, result, xp, 1, "talAIt", time.Now())
	for _, f := range embed.Fields {
		assert.LessOrEqual(t, len([]rune(f.Value)), maxFieldValue, f.Name)
		assert.LessOrEqual(t, len([]rune(f.Name)), maxFieldName)
	}
	issues := fieldNamed(embed, "⚠️ Issues")
	require.NotNil(t, issues)
	assert.True(t, strings.HasSuffix(issues.Value, "…"))
	assert.Len(t, []rune(issues.Value), maxFieldValue)
}

func TestOpenTicket(t *testing.T) {
	const guild = "tickets"
	bot := testBot(time.Now())
	ticket := &models.Ticket{GuildID: guild, UserID: "u", ChannelID: "c1", ChallengeID: 1}
	require.NoError(t, db.CreateTicket(ticket))

	none, err := bot.openTicket(guild, "other", 1, func(string) bool { return true })
	require.NoError(t, err)
	assert.Nil(t, none)

	found, err := bot.openTicket(guild, "u", 1, func(id string) bool { return id == "c1" })
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ticket.ID, found.ID)

	// the channel was deleted by hand
	found, err = bot.openTicket(guild, "u", 1, func(string) bool { return false })
	require.NoError(t, err)
	assert.Nil(t, found)
	_, err = db.GetOpenTicket(guild, "u", 1)
	assert.ErrorIs(t, err, database.ErrTicketNotFound)
}

func TestOpenTicketCloseFails(t *testing.T) {
	const dsn = "file:staletickets?mode=memory&cache=shared"
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := database.OpenDatabase(dsn, logger)
	require.NoError(t, err)
	defer store.Close()

	ticket := &models.Ticket{GuildID: "g", UserID: "u", ChannelID: "gone", ChallengeID: 1}
	require.NoError(t, store.CreateTicket(ticket))

	raw, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	conn, err := raw.DB()
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, raw.Exec(`CREATE TRIGGER tickets_read_only BEFORE UPDATE ON tickets
BEGIN SELECT RAISE(ABORT, 'tickets are read only'); END`).Error)

	bot := testBot(time.Now())
	bot.db = store
	found, err := bot.openTicket("g", "u", 1, func(string) bool { return false })
	assert.Error(t, err)
	assert.Nil(t, found)

	// the ticket is still open, so the failure must not be reported as a close
	open, err := store.GetOpenTicket("g", "u", 1)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, open.ID)
}
