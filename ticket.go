package talaitbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
	"github.com/talait/talaitbot/scoring"
	"github.com/talait/talaitbot/verifier"
)

const (
	ticketPrefix       = "ticket-"
	historyLimit       = 50
	maxAttachment      = 1 << 20
	submitTimeout      = 2 * time.Minute
	confirmExpiry      = 60 * time.Second
	ticketAllow        = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionEmbedLinks | discordgo.PermissionReadMessageHistory
	trainerAllow       = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory
	botAllow           = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels
	needManageChannels = "❌ I need \"Manage Channels\" permission!"
)

// closeDelay is how long a confirmed ticket channel stays before it is deleted.
var closeDelay = 3 * time.Second

var attachmentExts = []string{".py", ".java", ".cpp", ".js", ".go", ".txt"}

// fence tags that differ from the language key
var tagAliases = map[string]string{
	"py":     "python",
	"js":     "javascript",
	"ts":     "typescript",
	"c++":    "cpp",
	"golang": "go",
	"cs":     "csharp",
	"c#":     "csharp",
	"rb":     "ruby",
	"kt":     "kotlin",
}

// TicketChannelName returns the channel name of a user's ticket for a challenge week.
func TicketChannelName(username string, week int) string {
	return strings.ToLower(strings.ReplaceAll(fmt.Sprintf("%s%s-w%d", ticketPrefix, username, week), " ", "-"))
}

func fenceLanguage(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if alias, ok := tagAliases[tag]; ok {
		tag = alias
	}
	if tag == "any" {
		return "", false
	}
	if _, ok := scoring.LookupLanguage(tag); ok {
		return tag, true
	}
	return "", false
}

func allowedAttachment(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	for _, e := range attachmentExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractCode collects the code blocks and code attachments of msgs, which
// are ordered newest first, and returns them oldest first together with the
// language of the submission. fetch downloads an attachment.
func ExtractCode(msgs []*discordgo.Message, fetch func(url string) ([]byte, error)) (code, language string) {
	var blocks []string
	for idx := len(msgs) - 1; idx >= 0; idx-- {
		m := msgs[idx]
		if strings.Contains(m.Content, "```") {
			parts := strings.Split(m.Content, "```")
			for n := 1; n < len(parts); n += 2 {
				block := strings.TrimSpace(parts[n])
				if first, rest, ok := strings.Cut(block, "\n"); ok {
					if lang, known := fenceLanguage(first); known {
						block = strings.TrimSpace(rest)
						if language == "" {
							language = lang
						}
					}
				}
				if block != "" {
					blocks = append(blocks, block)
				}
			}
		}
		for _, a := range m.Attachments {
			if !allowedAttachment(a.Filename) {
				continue
			}
			data, err := fetch(a.URL)
			if err != nil || len(data) == 0 {
				continue
			}
			blocks = append(blocks, strings.TrimSpace(string(data)))
			if l, ok := scoring.LanguageForFile(a.Filename); ok && language == "" {
				language = l.Key
			}
		}
	}
	code = strings.Join(blocks, "\n\n")
	if code != "" && language == "" {
		language = scoring.DetectLanguage(code)
	}
	return code, language
}

func (bot *TalaitBot) download(ctx context.Context, s *discordgo.Session, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachment))
}

func (bot *TalaitBot) submitCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.deferReply(s, i, true) {
		return
	}
	user := interactionUser(i)
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.followupMsg(s, i, "❌ No active challenge!", true)
		return
	}

	ticket, err := bot.openTicket(i.GuildID, user.ID, challenge.ID, func(channelID string) bool {
		_, err := s.Channel(channelID)
		return err == nil
	})
	if err != nil {
		bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		return
	}
	if ticket != nil {
		bot.followupMsg(s, i, "✅ You already have a ticket: <#"+ticket.ChannelID+">", true)
		return
	}

	channel, err := bot.createTicketChannel(s, i.GuildID, user, challenge)
	if err != nil {
		bot.logCommand(i).Errorln("Failed to create ticket channel:", err)
		if isForbidden(err) {
			bot.followupMsg(s, i, needManageChannels, true)
		} else {
			bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		}
		return
	}

	ticket = &models.Ticket{
		GuildID:     i.GuildID,
		UserID:      user.ID,
		ChannelID:   channel.ID,
		ChallengeID: challenge.ID,
	}
	if err := bot.db.CreateTicket(ticket); err != nil {
		bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		return
	}

	if err := bot.postInstructions(s, channel.ID, user.ID, challenge); err != nil {
		bot.log.Errorln("Failed to post ticket instructions:", err)
	}
	bot.followupMsg(s, i, "✅ Created ticket: <#"+channel.ID+">", true)
	bot.logCommand(i).WithField("ticket", ticket.ID).Info("Ticket created")
}

// openTicket returns the user's open ticket for the challenge, or nil if
// there is none. A ticket whose channel no longer exists is closed so that a
// new one can be created.
func (bot *TalaitBot) openTicket(guildID, userID string, challengeID uint, channelExists func(channelID string) bool) (*models.Ticket, error) {
	ticket, err := bot.db.GetOpenTicket(guildID, userID, challengeID)
	if errors.Is(err, database.ErrTicketNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if channelExists(ticket.ChannelID) {
		return ticket, nil
	}
	if err := bot.db.CloseTicket(guildID, ticket.ID); err != nil {
		bot.log.WithError(err).WithFields(logrus.Fields{
			"guild":   guildID,
			"user_id": userID,
			"ticket":  ticket.ID,
		}).Error("Failed to close ticket with deleted channel")
		return nil, fmt.Errorf("failed to close stale ticket: %w", err)
	}
	bot.log.WithFields(logrus.Fields{"guild": guildID, "ticket": ticket.ID}).Info("Closed ticket with deleted channel")
	return nil, nil
}

// ticketCategory returns the ID of the submissions category, creating it if needed.
func (bot *TalaitBot) ticketCategory(s *discordgo.Session, guildID string) (string, error) {
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == bot.cfg.TicketCategory {
			return ch.ID, nil
		}
	}
	category, err := s.GuildChannelCreate(guildID, bot.cfg.TicketCategory, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

func (bot *TalaitBot) createTicketChannel(s *discordgo.Session, guildID string, user *discordgo.User, challenge *models.Challenge) (*discordgo.Channel, error) {
	parentID, err := bot.ticketCategory(s, guildID)
	if err != nil {
		return nil, err
	}
	overwrites := []*discordgo.PermissionOverwrite{
		// the @everyone role shares the guild's ID
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: user.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketAllow},
		{ID: s.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: botAllow},
	}
	for _, id := range bot.trainerRoleIDs(s, guildID) {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    id,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: trainerAllow,
		})
	}
	return s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 TicketChannelName(user.Username, challenge.Week),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             parentID,
		PermissionOverwrites: overwrites,
	})
}

func (bot *TalaitBot) postInstructions(s *discordgo.Session, channelID, userID string, challenge *models.Challenge) error {
	lang, ok := scoring.LookupLanguage(challenge.Language)
	if !ok {
		lang, _ = scoring.LookupLanguage("any")
	}
	exts := strings.Join(attachmentExts, " ")
	if len(lang.Extensions) > 0 {
		exts = strings.Join(lang.Extensions, " ")
	}
	desc, err := render(ticketInstructions, ticketData{
		UserID:     userID,
		Title:      challenge.Title,
		Difficulty: challenge.Difficulty,
		Language:   lang.Emoji + " " + lang.Name,
		CodeBlock:  lang.CodeBlock,
		Extensions: exts,
	})
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🎯 Submission Ticket - " + challenge.Title,
			Description: desc,
			Color:       colorBlue,
			Footer:      &discordgo.MessageEmbedFooter{Text: guildName(s, challenge.GuildID) + " • Good luck! 🚀"},
		}},
		Components: submitComponents(false),
	})
	return err
}

func submitComponents(submitted bool) []discordgo.MessageComponent {
	label := "Mark as Submitted ✅"
	if submitted {
		label = "Submitted ✅"
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    label,
				Style:    discordgo.SuccessButton,
				CustomID: submitButtonID,
				Disabled: submitted,
			},
		}},
	}
}

func (bot *TalaitBot) submitButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.respond(s, i, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}) {
		return
	}
	user := interactionUser(i)
	ticket, err := bot.db.GetTicketByChannel(i.GuildID, i.ChannelID)
	if err != nil {
		bot.followupMsg(s, i, "❌ Ticket not found!", true)
		return
	}
	if ticket.UserID != user.ID {
		bot.followupMsg(s, i, "❌ Only ticket owner!", true)
		return
	}
	if ticket.Submitted {
		bot.followupMsg(s, i, "✅ Already submitted!", true)
		return
	}
	challenge, err := bot.db.GetChallenge(i.GuildID, ticket.ChallengeID)
	if err != nil {
		bot.followupMsg(s, i, "❌ Challenge not found!", true)
		return
	}
	if challenge.Status != models.ChallengeActive {
		bot.followupMsg(s, i, "❌ This challenge is closed!", true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	msgs, err := s.ChannelMessages(i.ChannelID, historyLimit, "", "", "")
	if err != nil {
		bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		return
	}
	code, language := ExtractCode(msgs, func(url string) ([]byte, error) {
		return bot.download(ctx, s, url)
	})
	if code == "" {
		bot.followupMsg(s, i, "❌ No code found! Use "+fence+"python code "+fence, true)
		return
	}
	log := bot.logCommand(i).WithField("ticket", ticket.ID)
	log.Infof("Code found: %d chars (%s)", len(code), language)

	metrics := bot.analyzer.Analyze(ctx, code, language)
	result := bot.verifier.Verify(ctx, verifier.Request{
		Title:       challenge.Title,
		Description: challenge.Description,
		Difficulty:  challenge.Difficulty,
		Code:        code,
		Language:    language,
	})
	log.Infof("AI: solves=%t score=%d", result.SolvesChallenge, result.OverallScore)

	count, err := bot.db.CountSubmissions(challenge.ID)
	if err != nil {
		bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		return
	}
	rank := count + 1
	aiScore := result.OverallScore
	xp := scoring.Calculate(scoring.XPInput{
		CodeQuality:      metrics.Overall,
		SubmissionNumber: rank,
		TotalLines:       metrics.LineCount,
		SolvesChallenge:  result.SolvesChallenge,
		AIScore:          &aiScore,
	})

	_, err = bot.db.RecordSubmission(database.SubmissionRecord{
		GuildID:         i.GuildID,
		UserID:          user.ID,
		Username:        user.Username,
		TicketID:        ticket.ID,
		ChallengeID:     challenge.ID,
		ChannelID:       i.ChannelID,
		WeekKey:         challenge.WeekKey(),
		Language:        language,
		Rank:            rank,
		QualityScore:    result.OverallScore,
		XPAwarded:       xp.Total,
		SolvesChallenge: result.SolvesChallenge,
	})
	if errors.Is(err, database.ErrAlreadySubmitted) {
		bot.followupMsg(s, i, "✅ Already submitted!", true)
		return
	} else if err != nil {
		bot.followupMsg(s, i, "❌ Error: "+err.Error(), true)
		return
	}

	bot.followupEmbed(s, i, ReviewEmbed(language, metrics, result, xp, rank, guildName(s, i.GuildID), bot.now()))

	if i.Message != nil {
		components := submitComponents(true)
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         i.Message.ID,
			Channel:    i.ChannelID,
			Components: &components,
		}); err != nil {
			log.Errorln("Failed to disable submit button:", err)
		}
	}
	log.Infof("Submission complete: %d XP", xp.Total)
}

func bullets(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes ✅"
	}
	return "No ❌"
}

func xpEmoji(xp int) string {
	switch {
	case xp >= 8:
		return "🌟"
	case xp >= 5:
		return "⭐"
	}
	return "💧"
}

// ReviewEmbed renders the result of a graded submission.
func ReviewEmbed(language string, m scoring.Metrics, r verifier.Result, xp scoring.XPResult, rank int, guild string, now time.Time) *discordgo.MessageEmbed {
	color, mark := colorRed, "❌"
	if r.SolvesChallenge {
		color, mark = colorGreen, "✅"
	}
	name := language
	if l, ok := scoring.LookupLanguage(language); ok {
		name = l.Name
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🤖 AI Code Review Complete!",
		Description: fmt.Sprintf("Your %s solution has been analyzed", name),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			field(mark+" Challenge Verification", fmt.Sprintf(
				"**Solves Challenge:** %s\n**AI Score:** %d/100\n\n├─ Correctness: %d/100\n├─ Logic: %d/100\n└─ Completeness: %d/100",
				yesNo(r.SolvesChallenge), r.OverallScore, r.CorrectnessScore, r.LogicScore, r.CompletenessScore), false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s • Submission #%d", guild, rank)},
		Timestamp: timestamp(now),
	}
	if r.Feedback != "" {
		embed.Fields = append(embed.Fields, field("💬 AI Feedback", truncate(r.Feedback, 400), false))
	}
	if len(r.Issues) > 0 {
		embed.Fields = append(embed.Fields, field("⚠️ Issues", bullets(r.Issues, 3), false))
	}
	if len(r.Strengths) > 0 {
		embed.Fields = append(embed.Fields, field("💪 Strengths", bullets(r.Strengths, 3), false))
	}
	embed.Fields = append(embed.Fields,
		field("📊 Code Quality", fmt.Sprintf("**Score: %d/100** %s\n✓ Syntax: %d/100 | 📖 Style: %d/100 | ⚡ Efficiency: %d/100",
			m.Overall, scoring.ProgressBar(m.Overall), m.Correctness, m.Readability, m.Efficiency), false),
		field(fmt.Sprintf("%s XP Awarded: **%d XP**", xpEmoji(xp.Total), xp.Total), xp.Breakdown, false),
	)
	if len(m.Suggestions) > 0 {
		embed.Fields = append(embed.Fields, field("💡 Suggestions", bullets(m.Suggestions, 3), false))
	}
	return embed
}

// inTicket returns the ticket of the interaction's channel, replying with an
// error when the channel is not a ticket.
func (bot *TalaitBot) inTicket(s *discordgo.Session, i *discordgo.InteractionCreate, notTicket string) (*models.Ticket, bool) {
	if !strings.HasPrefix(channelName(s, i.ChannelID), ticketPrefix) {
		bot.replyMsg(s, i, notTicket)
		return nil, false
	}
	ticket, err := bot.db.GetTicketByChannel(i.GuildID, i.ChannelID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Ticket not found!")
		return nil, false
	}
	return ticket, true
}

func (bot *TalaitBot) closeTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ticket, ok := bot.inTicket(s, i, "❌ Use in ticket channels only!")
	if !ok {
		return
	}
	user := interactionUser(i)
	if ticket.UserID != user.ID && !bot.isTrainer(s, i) {
		bot.replyMsg(s, i, "❌ Only your ticket!")
		return
	}
	token := bot.confirms.add(pendingClose{
		guildID:   i.GuildID,
		channelID: i.ChannelID,
		userID:    user.ID,
		ticketID:  ticket.ID,
	}, bot.now())
	bot.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🔒 Close this ticket?",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Yes, Close", Style: discordgo.DangerButton, CustomID: closeConfirmID + ":" + token},
					discordgo.Button{Label: "Cancel", Style: discordgo.SecondaryButton, CustomID: closeCancelID + ":" + token},
				}},
			},
		},
	})
}

func updateMessage(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	}
}

func componentToken(i *discordgo.InteractionCreate) string {
	_, token, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	return token
}

func (bot *TalaitBot) closeConfirmButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	pending, ok := bot.confirms.take(componentToken(i), bot.now())
	if !ok || pending.userID != interactionUser(i).ID {
		bot.respond(s, i, updateMessage("⌛ This confirmation expired. Run `/closeticket` again."))
		return
	}
	if err := bot.db.CloseTicket(pending.guildID, pending.ticketID); err != nil {
		bot.respond(s, i, updateMessage("❌ Error: "+err.Error()))
		return
	}
	bot.respond(s, i, updateMessage("🔒 Closing..."))
	bot.logCommand(i).WithField("ticket", pending.ticketID).Info("Ticket closed")
	time.AfterFunc(closeDelay, func() {
		if _, err := s.ChannelDelete(pending.channelID); err != nil {
			bot.log.Errorln("Failed to delete ticket channel:", err)
		}
	})
}

func (bot *TalaitBot) closeCancelButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.confirms.take(componentToken(i), bot.now())
	bot.respond(s, i, updateMessage("❌ Cancelled"))
}

func (bot *TalaitBot) listTicketsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Trainers only!") {
		return
	}
	challenge, err := bot.db.GetActiveChallenge(i.GuildID)
	if err != nil {
		bot.replyMsg(s, i, "❌ No active challenge!")
		return
	}
	tickets, err := bot.db.GetTicketsByChallenge(i.GuildID, challenge.ID)
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	if len(tickets) == 0 {
		bot.replyMsg(s, i, "📋 No tickets yet!")
		return
	}
	submitted := 0
	for _, t := range tickets {
		if t.Submitted {
			submitted++
		}
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Tickets - Week %d", challenge.Week),
		Description: fmt.Sprintf("Total: **%d**", len(tickets)),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Stats", fmt.Sprintf("✅ Submitted: %d\n⏳ Pending: %d", submitted, len(tickets)-submitted), false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: guildName(s, i.GuildID)},
	}
	for idx, t := range tickets {
		if idx == 10 {
			break
		}
		name := "<@" + t.UserID + ">"
		if u, err := s.User(t.UserID); err == nil {
			name = u.Username
		}
		status := "⏳"
		if t.Submitted {
			status = "✅"
		}
		where := "Deleted"
		if t.Status == models.TicketOpen && channelName(s, t.ChannelID) != "" {
			where = "<#" + t.ChannelID + ">"
		}
		embed.Fields = append(embed.Fields, field(status+" "+name, fmt.Sprintf("%s | %d XP", where, t.XPAwarded), true))
	}
	bot.replyEmbed(s, i, embed, true)
}

func (bot *TalaitBot) feedbackCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.requireTrainer(s, i, "❌ Trainers only!") {
		return
	}
	ticket, ok := bot.inTicket(s, i, "❌ Use in ticket!")
	if !ok {
		return
	}
	trainer := interactionUser(i)
	_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content: "<@" + ticket.UserID + ">",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "💬 Trainer Feedback",
			Description: options(i).String("message", ""),
			Color:       colorGreen,
			Author:      &discordgo.MessageEmbedAuthor{Name: trainer.Username, IconURL: trainer.AvatarURL("")},
			Timestamp:   timestamp(bot.now()),
		}},
	})
	if err != nil {
		bot.replyMsg(s, i, "❌ Error: "+err.Error())
		return
	}
	bot.replyMsg(s, i, "✅ Feedback sent!")
}

type pendingClose struct {
	guildID   string
	channelID string
	userID    string
	ticketID  uint
	expires   time.Time
}

// confirmations holds pending ticket close confirmations by token.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]pendingClose
}

func newConfirmations() *confirmations {
	return &confirmations{pending: make(map[string]pendingClose)}
}

func (c *confirmations) add(p pendingClose, now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, old := range c.pending {
		if now.After(old.expires) {
			delete(c.pending, token)
		}
	}
	token := uuid.NewString()
	p.expires = now.Add(confirmExpiry)
	c.pending[token] = p
	return token
}

// take removes the confirmation and reports whether it existed and had not expired.
func (c *confirmations) take(token string, now time.Time) (pendingClose, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[token]
	if !ok {
		return pendingClose{}, false
	}
	delete(c.pending, token)
	return p, !now.After(p.expires)
}
