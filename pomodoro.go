package talaitbot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/pomodoro"
)

// timerNotifier shows pomodoro events in Discord.
type timerNotifier struct {
	bot *TalaitBot
}

func (n *timerNotifier) Refresh(st pomodoro.Status) {
	if st.ChannelID == "" || st.MessageID == "" {
		return
	}
	if _, err := n.bot.client.ChannelMessageEditEmbed(st.ChannelID, st.MessageID, timerEmbed(st)); err != nil {
		n.bot.log.Debugln("Failed to refresh pomodoro message:", err)
	}
}

func (n *timerNotifier) PhaseChanged(st pomodoro.Status) {
	var embed *discordgo.MessageEmbed
	if st.Phase == pomodoro.Work {
		embed = &discordgo.MessageEmbed{
			Title:       "✅ Break Time Over!",
			Description: "Time to get back to work! 💪",
			Color:       colorGreen,
			Fields:      []*discordgo.MessageEmbedField{field("Next Session", fmt.Sprintf("#%d", st.Session), true)},
			Footer:      &discordgo.MessageEmbedFooter{Text: "Ready to focus?"},
		}
	} else {
		kind := "Short"
		if st.Phase == pomodoro.LongBreak {
			kind = "Long"
		}
		embed = &discordgo.MessageEmbed{
			Title:       "🎉 Work Session Complete!",
			Description: fmt.Sprintf("Great job! Take a %s.", st.Phase),
			Color:       colorGold,
			Fields: []*discordgo.MessageEmbedField{
				field("Sessions Completed", fmt.Sprint(st.Session), true),
				field("Break Duration", fmt.Sprintf("%d minutes", int(st.Config.Duration(st.Phase).Minutes())), true),
			},
			Footer: &discordgo.MessageEmbedFooter{Text: kind + " Break • Relax and recharge!"},
		}
	}
	n.bot.sendDM(n.bot.client, st.UserID, embed)
}

func phaseColor(p pomodoro.Phase) int {
	if p.IsBreak() {
		return colorOrange
	}
	return colorRed
}

func statusEmoji(st pomodoro.Status) string {
	switch {
	case st.Paused:
		return "⏸️"
	case !st.Running:
		return "⏹️"
	case st.Phase.IsBreak():
		return "☕"
	}
	return "🍅"
}

// timerEmbed renders the live status message of a timer.
func timerEmbed(st pomodoro.Status) *discordgo.MessageEmbed {
	title := "Focus Time 🍅"
	if st.Phase.IsBreak() {
		title = "Break Time ☕"
	}
	if st.Paused {
		title += " (paused)"
	}
	left := int(st.Left.Seconds())
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("<@%s> - Session #%d", st.UserID, st.Session),
		Color:       phaseColor(st.Phase),
		Fields: []*discordgo.MessageEmbedField{
			field("⏱️ Time Remaining", fmt.Sprintf("```%02d:%02d```\n%s", left/60, left%60, pomodoro.Bar(st.Progress)), false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Updates every 5 seconds"},
	}
}

func pomodoroError(err error) string {
	switch {
	case errors.Is(err, pomodoro.ErrWorkRange):
		return "❌ Work time must be between 1-120 minutes!"
	case errors.Is(err, pomodoro.ErrShortBreakRange):
		return "❌ Short break must be between 1-60 minutes!"
	case errors.Is(err, pomodoro.ErrLongBreakRange):
		return "❌ Long break must be between 1-60 minutes!"
	case errors.Is(err, pomodoro.ErrSessionsRange):
		return "❌ Sessions must be between 1-10!"
	case errors.Is(err, pomodoro.ErrAlreadyRunning):
		return "❌ You already have an active Pomodoro! Use `/pomodoro-stop` first."
	case errors.Is(err, pomodoro.ErrNoTimer):
		return "❌ You don't have an active timer!"
	case errors.Is(err, pomodoro.ErrNotRunning):
		return "❌ Timer is not running!"
	case errors.Is(err, pomodoro.ErrNotPaused):
		return "❌ Timer is not paused!"
	case errors.Is(err, pomodoro.ErrPaused):
		return "❌ Timer is paused! Use `/pomodoro-resume` first."
	}
	return "❌ Error: " + err.Error()
}

func (bot *TalaitBot) pomodoroCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := options(i)
	def := pomodoro.DefaultConfig()
	cfg := pomodoro.Config{
		Work:              opts.Int("work", def.Work),
		ShortBreak:        opts.Int("short_break", def.ShortBreak),
		LongBreak:         opts.Int("long_break", def.LongBreak),
		SessionsUntilLong: opts.Int("sessions", def.SessionsUntilLong),
	}
	user := interactionUser(i)
	st, err := bot.timers.Start(i.GuildID, user.ID, cfg)
	if err != nil {
		bot.replyMsg(s, i, pomodoroError(err))
		return
	}
	ok := bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🍅 Pomodoro Started!",
		Description: fmt.Sprintf("<@%s> is focusing...", user.ID),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			field("⏰ Work Time", fmt.Sprintf("%d minutes", cfg.Work), true),
			field("☕ Short Break", fmt.Sprintf("%d minutes", cfg.ShortBreak), true),
			field("🌙 Long Break", fmt.Sprintf("%d minutes", cfg.LongBreak), true),
			field("🔄 Sessions Until Long", fmt.Sprint(cfg.SessionsUntilLong), true),
			field("📍 Current Session", fmt.Sprintf("#%d", st.Session), true),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Stay focused! Live timer below..."},
	}, false)
	if !ok {
		return
	}
	msg, err := s.ChannelMessageSendEmbed(i.ChannelID, timerEmbed(st))
	if err != nil {
		bot.logCommand(i).Errorln("Failed to send live timer:", err)
		return
	}
	bot.timers.Attach(i.GuildID, user.ID, msg.ChannelID, msg.ID)
}

func (bot *TalaitBot) pomodoroStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st, err := bot.timers.Status(i.GuildID, interactionUser(i).ID)
	if err != nil {
		bot.replyMsg(s, i, "❌ You don't have an active Pomodoro timer!")
		return
	}
	mode := "Work"
	if st.Phase.IsBreak() {
		mode = "Break"
	}
	state := field("▶️ Status", "Running", false)
	if st.Paused {
		state = field("⏸️ Status", "Paused", false)
	}
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title: statusEmoji(st) + " Pomodoro Status",
		Color: phaseColor(st.Phase),
		Fields: []*discordgo.MessageEmbedField{
			field("Mode", mode, true),
			field("Time Left", formatDuration(st.Left), true),
			field("Session", fmt.Sprintf("#%d", st.Session), true),
			field("⏰ Config", fmt.Sprintf("Work: %dm | Short: %dm | Long: %dm", st.Config.Work, st.Config.ShortBreak, st.Config.LongBreak), false),
			state,
		},
	}, true)
}

func (bot *TalaitBot) pomodoroPauseCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st, err := bot.timers.Pause(i.GuildID, interactionUser(i).ID)
	if err != nil {
		bot.replyMsg(s, i, pomodoroError(err))
		return
	}
	bot.timerNotifier().Refresh(st)
	bot.replyMsg(s, i, fmt.Sprintf("⏸️ Pomodoro paused! Time remaining: %s\nUse `/pomodoro-resume` to continue.", formatDuration(st.Left)))
}

func (bot *TalaitBot) pomodoroResumeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st, err := bot.timers.Resume(i.GuildID, interactionUser(i).ID)
	if err != nil {
		bot.replyMsg(s, i, pomodoroError(err))
		return
	}
	bot.timerNotifier().Refresh(st)
	bot.replyMsg(s, i, "▶️ Pomodoro resumed!")
}

func (bot *TalaitBot) pomodoroStopCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	st, err := bot.timers.Stop(i.GuildID, interactionUser(i).ID)
	if err != nil {
		bot.replyMsg(s, i, pomodoroError(err))
		return
	}
	if st.MessageID != "" {
		if err := s.ChannelMessageDelete(st.ChannelID, st.MessageID); err != nil {
			bot.log.Debugln("Failed to delete live timer:", err)
		}
	}
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🛑 Pomodoro Stopped",
		Description: fmt.Sprintf("Timer completely stopped. You completed **%d** session(s).", st.Session),
		Color:       colorBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use /pomodoro to start a new session!"},
	}, true)
}

func (bot *TalaitBot) pomodoroSkipCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	phase, err := bot.timers.Skip(i.GuildID, interactionUser(i).ID)
	if err != nil {
		bot.replyMsg(s, i, pomodoroError(err))
		return
	}
	name := "work"
	if phase.IsBreak() {
		name = "break"
	}
	bot.replyMsg(s, i, fmt.Sprintf("⏭️ Skipped %s phase!", name))
}

func (bot *TalaitBot) pomodoroFocusingCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	focusing := bot.timers.Focusing(i.GuildID)
	if len(focusing) == 0 {
		bot.replyMsg(s, i, "🍅 No one is focusing right now!")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🍅 Currently Focusing",
		Description: fmt.Sprintf("%d member(s) are in focus mode", len(focusing)),
		Color:       colorRed,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Keep up the great work! 💪"},
	}
	for _, st := range focusing {
		embed.Fields = append(embed.Fields, field("🔴 "+bot.username(s, i.GuildID, st.UserID),
			fmt.Sprintf("Session #%d • %s left", st.Session, formatDuration(st.Left)), false))
	}
	bot.replyEmbed(s, i, embed, false)
}

func (bot *TalaitBot) pomodoroOnBreakCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	onBreak := bot.timers.OnBreak(i.GuildID)
	if len(onBreak) == 0 {
		bot.replyMsg(s, i, "☕ No one is on break right now!")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "☕ Currently On Break",
		Description: fmt.Sprintf("%d member(s) are taking a break", len(onBreak)),
		Color:       colorOrange,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Enjoy your rest! 😊"},
	}
	for _, st := range onBreak {
		kind := "☕ Short Break"
		if st.Phase == pomodoro.LongBreak {
			kind = "🌙 Long Break"
		}
		embed.Fields = append(embed.Fields, field(bot.username(s, i.GuildID, st.UserID),
			fmt.Sprintf("%s • %s left", kind, formatDuration(st.Left)), false))
	}
	bot.replyEmbed(s, i, embed, false)
}

func (bot *TalaitBot) pomodoroLeaderboardCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	board := bot.timers.Leaderboard(i.GuildID)
	if len(board) == 0 {
		bot.replyMsg(s, i, "📊 No Pomodoro sessions yet! Start one with `/pomodoro`")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🍅 Pomodoro Leaderboard",
		Description: "Most productive members in " + guildName(s, i.GuildID),
		Color:       colorRed,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Keep up the great work! 💪"},
	}
	for idx, st := range board {
		if idx == leaderboardSize {
			break
		}
		embed.Fields = append(embed.Fields, field(rankLabel(idx+1)+" "+bot.username(s, i.GuildID, st.UserID),
			fmt.Sprintf("%d sessions 🍅", st.Session), false))
	}
	bot.replyEmbed(s, i, embed, false)
}

func (bot *TalaitBot) pomodoroHelpCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🍅 Pomodoro Technique Guide",
		Description: "A time management method to boost productivity!",
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			field("📚 What is Pomodoro?", "Work in focused 25-minute intervals with short breaks in between.", false),
			field("🎯 How It Works", "1️⃣ Work for 25 minutes (1 Pomodoro)\n"+
				"2️⃣ Take a 5-minute break\n"+
				"3️⃣ After 4 Pomodoros, take a 15-minute break\n"+
				"4️⃣ Repeat!", false),
			field("💻 Commands", "`/pomodoro` - Start timer with live updates\n"+
				"`/pomodoro-status` - Check current timer\n"+
				"`/pomodoro-pause` - Pause timer\n"+
				"`/pomodoro-resume` - Resume timer\n"+
				"`/pomodoro-skip` - Skip to next phase\n"+
				"`/pomodoro-stop` - Stop timer completely\n"+
				"`/pomodoro-focusing` - See who's focusing\n"+
				"`/pomodoro-onbreak` - See who's on break\n"+
				"`/pomodoro-leaderboard` - View rankings", false),
			field("⚙️ Custom Configuration", "Example: `/pomodoro work:30 short_break:10 long_break:20 sessions:3`\n"+
				"Customize every parameter to fit your workflow!", false),
			field("💡 Tips", "• Use DMs for notifications\n"+
				"• Eliminate distractions during work\n"+
				"• Actually take your breaks!\n"+
				"• Track your sessions with leaderboard", false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Stay focused and productive! 🚀"},
	}, false)
}

func (bot *TalaitBot) timerNotifier() *timerNotifier {
	return &timerNotifier{bot: bot}
}

// username returns the member's display name, falling back to a mention.
func (bot *TalaitBot) username(s *discordgo.Session, guildID, userID string) string {
	if gm, err := s.State.Member(guildID, userID); err == nil && gm.User != nil {
		return getMemberName(gm)
	}
	if gm, err := s.GuildMember(guildID, userID); err == nil && gm.User != nil {
		return getMemberName(gm)
	}
	return "<@" + userID + ">"
}
