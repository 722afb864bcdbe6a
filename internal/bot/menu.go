package bot

import (
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
)

const (
	CommandStart      = "/start"
	CommandHelp       = "/help"
	CommandLang       = "/lang"
	CommandBan        = "/ban"
	CommandUnban      = "/unban"
	CommandStatistics = "/statistics"
)

// AdminCommands are the commands only admins may invoke.
func AdminCommands() []string {
	return []string{CommandBan, CommandUnban, CommandStatistics}
}

// menuCommands builds the command menu for the given role and language.
// It has no state of its own, the menu is recomputed on every /start.
func menuCommands(msgs i18n.Messages, role model.Role) []tele.Command {
	commands := []tele.Command{
		{Text: CommandStart, Description: msgs.StartDescription},
		{Text: CommandHelp, Description: msgs.HelpDescription},
		{Text: CommandLang, Description: msgs.LangDescription},
	}
	if role == model.RoleAdmin {
		commands = append(commands,
			tele.Command{Text: CommandBan, Description: msgs.BanDescription},
			tele.Command{Text: CommandUnban, Description: msgs.UnbanDescription},
			tele.Command{Text: CommandStatistics, Description: msgs.StatisticsDescription},
		)
	}
	return commands
}
