package talaitbot

import (
	"text/template"

	"github.com/bwmarrin/discordgo"
	"github.com/talait/talaitbot/scoring"
)

const memberHelp = "`/leaderboard` - View current monthly rankings\n" +
	"`/halloffame` - View all-time champions\n" +
	"`/stats [@user]` - View your or another user's stats\n" +
	"`/activechallenge` - View current active challenge\n" +
	"`/challengetimer` - Check time remaining\n" +
	"`/submit` - Create submission ticket\n" +
	"`/closeticket` - Close your submission ticket\n" +
	"`/help` - Show this help message\n" +
	"`/about` - Learn about the bot"

const pomodoroHelp = "`/pomodoro` - Start focus timer (default: 25min work, 5min break)\n" +
	"`/pomodoro-status` - Check your timer status\n" +
	"`/pomodoro-pause` - Pause your timer\n" +
	"`/pomodoro-resume` - Resume paused timer\n" +
	"`/pomodoro-skip` - Skip to next phase\n" +
	"`/pomodoro-stop` - Stop timer completely\n" +
	"`/pomodoro-focusing` - See who's focusing now\n" +
	"`/pomodoro-onbreak` - See who's on break\n" +
	"`/pomodoro-leaderboard` - View session rankings\n" +
	"`/pomodoro-help` - Detailed Pomodoro guide"

const trainerHelp = "`/postchallenge` - Post new challenge (duration in MINUTES)\n" +
	"`/closechallenge` - Manually close challenge\n" +
	"`/extendchallenge` - Add more minutes to challenge\n" +
	"`/awardwinners` - Award XP to top 3 winners\n" +
	"`/addxp` - Give XP to specific user\n" +
	"`/removexp` - Remove XP from user\n" +
	"`/listtickets` - View all submission tickets\n" +
	"`/listusers` - View all users in leaderboard\n" +
	"`/feedback` - Give feedback in ticket\n" +
	"`/languages` - View supported languages"

const adminHelp = "`/resetmonth` - Manually reset monthly leaderboard"

var rewardsHelp = createTemplate("rewardsHelp", `**Challenge Winners:**
🥇 **1st Place:** {{.First}} XP + Winner Badge
🥈 **2nd Place:** {{.Second}} XP + 2nd Place Badge
🥉 **3rd Place:** {{.Third}} XP + 3rd Place Badge
✅ **Participation:** {{.Participation}} XP

**Auto-XP System (Tickets):**
AI verifies your solution and awards XP based on:
• Code correctness and logic
• Code quality and style
• Submission timing (early bonus)
• Effort (lines of code)`)

var timersHelp = createTemplate("timersHelp", `Challenges auto-close after set duration:
• Default: {{.Default}} minutes
• Max: {{.Max}} minutes (24 hours)
• Extend with `+"`/extendchallenge`"+`
• Check remaining time with `+"`/challengetimer`")

const participateHelp = "1️⃣ Wait for challenge post (trainers use `/postchallenge`)\n" +
	"2️⃣ Use `/submit` to create your private ticket\n" +
	"3️⃣ Post your code in the ticket channel\n" +
	"4️⃣ Click ✅ button to submit for AI review\n" +
	"5️⃣ Get instant AI feedback + XP!\n" +
	"6️⃣ Trainers review and award top 3 winners"

type rewardsData struct {
	First, Second, Third, Participation int
}

type timersData struct {
	Default, Max int
}

func (bot *TalaitBot) helpField(name string, tmpl *template.Template, data any) *discordgo.MessageEmbedField {
	value, err := render(tmpl, data)
	if err != nil {
		bot.log.Errorln("Failed to render help text:", err)
	}
	return field(name, value, false)
}

func (bot *TalaitBot) helpCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📚 talAIt Bot - Complete Command Guide",
		Description: "Welcome to talAIt! Here are all available commands organized by category:",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("👥 Member Commands", memberHelp, false),
			field("🍅 Pomodoro Timer Commands", pomodoroHelp, false),
			field("🎓 Trainer Commands", trainerHelp, false),
			field("⚙️ Admin Commands", adminHelp, false),
			bot.helpField("🏆 XP & Rewards System", rewardsHelp, rewardsData{
				scoring.FirstPlaceXP, scoring.SecondPlaceXP, scoring.ThirdPlaceXP, scoring.ParticipationXP,
			}),
			field("📝 How to Participate in Challenges", participateHelp, false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Use /about for more info • talAIt Bot v2.0"},
	}, false)
}

func (bot *TalaitBot) aboutCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title: "ℹ️ About talAIt Bot",
		Description: "**talAIt** is your complete coding challenge companion!\n\n" +
			"We help you track challenges, manage submissions, award XP, " +
			"and maintain leaderboards for your coding community.",
		Color: colorPurple,
		Fields: []*discordgo.MessageEmbedField{
			field("🎯 Key Features", "✅ **Challenge System** - Auto-close timers, multi-language support\n"+
				"✅ **Private Tickets** - Submit code in private channels\n"+
				"✅ **AI Code Review** - Instant feedback with Gemini AI\n"+
				"✅ **Auto-XP System** - Smart XP calculation based on quality\n"+
				"✅ **Pomodoro Timers** - Stay focused with live timers\n"+
				"✅ **Leaderboards** - Monthly rankings & Hall of Fame\n"+
				"✅ **Badge System** - Earn badges for achievements", false),
			field("🤖 AI-Powered Features", "**Gemini 2.0 Flash** analyzes your code:\n"+
				"• Verifies if solution solves the challenge\n"+
				"• Checks correctness, logic, and completeness\n"+
				"• Provides detailed feedback\n"+
				"• Awards XP automatically based on quality", false),
			field("🔄 Challenge Flow", "**1. Post** - Trainer creates challenge with duration\n"+
				"**2. Submit** - Users create private tickets\n"+
				"**3. AI Review** - Instant automated feedback\n"+
				"**4. Award** - Trainers pick top 3 winners\n"+
				"**5. Auto-Close** - Challenge closes after timer", false),
			field("🍅 Pomodoro Technique", "Built-in productivity timer:\n"+
				"• Work in 25-minute focused sessions\n"+
				"• Take 5-minute breaks\n"+
				"• Long break after 4 sessions\n"+
				"• Live countdown with progress bar\n"+
				"• See who's focusing or on break", false),
			field("💻 Supported Languages", "Python, JavaScript, TypeScript, Java, C, C++, C#, Go, Rust, "+
				"PHP, Ruby, Swift, Kotlin, SQL, and more!\n"+
				"Use `/languages` to see all supported languages.", false),
			field("📊 Leaderboard System", "• **Monthly Leaderboard** - Resets every 1st of month\n"+
				"• **Hall of Fame** - Permanent all-time rankings\n"+
				"• **User Stats** - Track your progress over time\n"+
				"• **Badge Collection** - Show off your achievements", false),
			bot.helpField("⏰ Challenge Timers", timersHelp, timersData{defaultDuration, maxDuration}),
			field("🎓 Perfect For", "• Coding bootcamps and training programs\n"+
				"• Programming communities and study groups\n"+
				"• Technical interview preparation\n"+
				"• Competitive programming practice\n"+
				"• Team skill development", false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Built with ❤️ for the talAIt community • Version 2.0"},
	}, false)
}

func (bot *TalaitBot) quickstartCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.replyEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🚀 Quick Start Guide",
		Description: "Get started with talAIt in 3 easy steps!",
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("Step 1: Wait for a Challenge 📢", "Trainers will post challenges using `/postchallenge`\n"+
				"You'll see an @everyone notification with:\n"+
				"• Challenge title and description\n"+
				"• Difficulty level (Easy/Medium/Hard)\n"+
				"• Programming language\n"+
				"• Auto-close timer", false),
			field("Step 2: Submit Your Solution 📝", "1. Use `/submit` to create your private ticket\n"+
				"2. Write your solution in the ticket channel\n"+
				"3. Use code blocks: "+fence+"python\\n your code \\n"+fence+"\n"+
				"4. Click the ✅ button to submit\n"+
				"5. Get instant AI feedback and XP!", false),
			field("Step 3: Track Your Progress 📊", "• Use `/stats` to see your XP and rank\n"+
				"• Use `/leaderboard` to see top performers\n"+
				"• Earn badges for winning challenges\n"+
				"• Climb the monthly rankings!", false),
			field("💡 Pro Tips", "• Submit early for bonus XP\n"+
				"• Write clean, well-commented code\n"+
				"• Use `/pomodoro` to stay focused\n"+
				"• Check `/challengetimer` for deadline\n"+
				"• Ask trainers for help in ticket", false),
			field("🆘 Need Help?", "• Use `/help` for full command list\n"+
				"• Use `/about` to learn about features\n"+
				"• Use `/pomodoro-help` for timer guide\n"+
				"• Ask trainers or admins for support", false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Happy Coding! 🎉"},
	}, true)
}

// CommandsEmbed lists the commands available to a member with the given roles.
func CommandsEmbed(guild string, trainer, admin bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📋 Available Commands",
		Description: "Commands you can use based on your roles:",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("👤 Your Commands", "**Challenges:**\n"+
				"`/activechallenge` `/challengetimer` `/submit` `/closeticket`\n\n"+
				"**Stats:**\n"+
				"`/leaderboard` `/halloffame` `/stats`\n\n"+
				"**Pomodoro:**\n"+
				"`/pomodoro` `/pomodoro-status` `/pomodoro-pause` `/pomodoro-resume`\n"+
				"`/pomodoro-stop` `/pomodoro-skip` `/pomodoro-focusing` `/pomodoro-onbreak`\n\n"+
				"**Help:**\n"+
				"`/help` `/about` `/quickstart` `/commands`", false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: guild + " • Use /help for detailed descriptions"},
	}
	if trainer {
		embed.Fields = append(embed.Fields, field("🎓 Trainer Commands", "`/postchallenge` `/closechallenge` `/extendchallenge`\n"+
			"`/awardwinners` `/addxp` `/removexp`\n"+
			"`/listtickets` `/listusers` `/feedback` `/languages`", false))
	}
	if admin {
		embed.Fields = append(embed.Fields, field("⚙️ Admin Commands", adminHelp, false))
	}
	return embed
}

func (bot *TalaitBot) commandsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	bot.replyEmbed(s, i, CommandsEmbed(guildName(s, i.GuildID), bot.isTrainer(s, i), isAdmin(i)), true)
}
