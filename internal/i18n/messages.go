package i18n

// Messages is a localized string table. Statistics is a format string that
// receives the rendered top list as its single argument.
type Messages struct {
	LanguageName string

	Start       string
	Help        string
	HelpAdmin   string
	ChooseLang  string
	LanguageSet string

	EmptyBanArg   string
	EmptyUnbanArg string
	BadBanArg     string
	BadUnbanArg   string
	NoSuchUser    string
	AlreadyBanned string
	BanSuccess    string
	NotBanned     string
	UnbanSuccess  string

	Statistics string

	GeneralError string

	StartDescription      string
	HelpDescription       string
	LangDescription       string
	BanDescription        string
	UnbanDescription      string
	StatisticsDescription string
}

var messagesEN = Messages{
	LanguageName: "English",

	Start:       "Hi! I am up and running.\nUse the menu or send /help to see what I can do.",
	Help:        "Available commands:\n/start — restart the bot\n/lang — choose a language\n/help — this message",
	HelpAdmin:   "Available commands:\n/start — restart the bot\n/lang — choose a language\n/help — this message\n/ban — ban a user by id or @username\n/unban — unban a user by id or @username\n/statistics — top users by activity",
	ChooseLang:  "Choose your language:",
	LanguageSet: "Language saved.",

	EmptyBanArg:   "Specify who to ban: /ban <id> or /ban @username",
	EmptyUnbanArg: "Specify who to unban: /unban <id> or /unban @username",
	BadBanArg:     "I can ban only by numeric id or @username.",
	BadUnbanArg:   "I can unban only by numeric id or @username.",
	NoSuchUser:    "There is no such user.",
	AlreadyBanned: "This user is already banned.",
	BanSuccess:    "User banned.",
	NotBanned:     "This user is not banned.",
	UnbanSuccess:  "User unbanned.",

	Statistics: "Top users by activity:\n%s",

	GeneralError: "Something went wrong, try again later.",

	StartDescription:      "restart the bot",
	HelpDescription:       "how to use the bot",
	LangDescription:       "choose a language",
	BanDescription:        "ban a user",
	UnbanDescription:      "unban a user",
	StatisticsDescription: "top users by activity",
}

var messagesRU = Messages{
	LanguageName: "Русский",

	Start:       "Привет! Я запущен и работаю.\nОткрой меню или отправь /help, чтобы узнать, что я умею.",
	Help:        "Доступные команды:\n/start — перезапустить бота\n/lang — выбрать язык\n/help — это сообщение",
	HelpAdmin:   "Доступные команды:\n/start — перезапустить бота\n/lang — выбрать язык\n/help — это сообщение\n/ban — забанить пользователя по id или @username\n/unban — разбанить пользователя по id или @username\n/statistics — топ пользователей по активности",
	ChooseLang:  "Выбери язык:",
	LanguageSet: "Язык сохранён.",

	EmptyBanArg:   "Укажи, кого банить: /ban <id> или /ban @username",
	EmptyUnbanArg: "Укажи, кого разбанить: /unban <id> или /unban @username",
	BadBanArg:     "Банить можно только по числовому id или @username.",
	BadUnbanArg:   "Разбанить можно только по числовому id или @username.",
	NoSuchUser:    "Такого пользователя нет.",
	AlreadyBanned: "Этот пользователь уже забанен.",
	BanSuccess:    "Пользователь забанен.",
	NotBanned:     "Этот пользователь не забанен.",
	UnbanSuccess:  "Пользователь разбанен.",

	Statistics: "Топ пользователей по активности:\n%s",

	GeneralError: "Что-то пошло не так, попробуй позже.",

	StartDescription:      "перезапустить бота",
	HelpDescription:       "как пользоваться ботом",
	LangDescription:       "выбрать язык",
	BanDescription:        "забанить пользователя",
	UnbanDescription:      "разбанить пользователя",
	StatisticsDescription: "топ пользователей по активности",
}
