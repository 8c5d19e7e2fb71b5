package config

import "time"

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultDBPath      = "sonnik.db"
	DefaultBusyTimeout = 5 * time.Second

	DefaultAIProvider    = "openrouter"
	DefaultAIBaseURL     = "https://openrouter.ai/api/v1"
	DefaultAIModel       = "deepseek/deepseek-chat-v3-0324"
	DefaultAITemperature = 0.7
	DefaultAIMaxTokens   = 1000
	DefaultAITimeout     = 30 * time.Second
	DefaultAIReferer     = "https://dream-interpreter.com"
	DefaultAITitle       = "ИИ Сонник"
	DefaultGeminiModel   = "gemini-2.0-flash"

	DefaultHistoryWindow       = 6
	DefaultDisplayHistoryLimit = 20

	DefaultWebAddress    = ":8080"
	DefaultWebCookieName = "sonnik_session"
	DefaultWebSessionTTL = 30 * 24 * time.Hour
)

// DefaultMessages are the Russian texts shown when none are configured.
var DefaultMessages = MessagesConfig{
	Welcome: `👋 Привет! Я ИИ-сонник.

Я помогу вам понять значение ваших снов через психологический анализ.

Просто опишите свой сон, и я дам вам:
• Анализ основных символов
• Психологическую интерпретацию
• Связь с реальной жизнью
• Практические рекомендации

📝 Пример: "Мне приснилось, что я лечу над городом и вижу все сверху"

Расскажите, что вам приснилось? 💭`,
	Help: `🤖 Как пользоваться ботом:

1. Просто напишите описание своего сна
2. Я проанализирую его с точки зрения психологии
3. Дам развернутую интерпретацию и рекомендации

🔗 /link - связать Telegram с аккаунтом на сайте
❌ /cancel - отменить привязку

💡 Чем подробнее вы опишете сон, тем точнее будет анализ!`,
	About: `ℹ️ О боте:

Я - ИИ-помощник для толкования снов, основанный на современных психологических подходах (Фрейд, Юнг, современная психология).

Напишите свой сон для анализа! 🌙`,

	EmptyInput:         "Пожалуйста, опишите свой сон.",
	DuplicateIdentity:  "Пользователь с такими данными уже существует.",
	InvalidCredential:  "Неверный номер телефона или пароль.",
	IdentityNotFound:   "Пользователь не найден. Пожалуйста, сначала зарегистрируйтесь.",
	InvalidProfile:     "Все поля обязательны для заполнения: телефон в формате +79990000000, имя, дата рождения ГГГГ-ММ-ДД и пароль.",
	GatewayError:       "Извините, произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте еще раз.",
	GatewayUnavailable: "Извините, сервис временно недоступен. Пожалуйста, попробуйте позже.",
	GeneralError:       "Извините, произошла ошибка. Пожалуйста, попробуйте еще раз.",

	LinkAskPhone:    "Введите номер телефона, указанный при регистрации на сайте (например, +79990000000).",
	LinkAskPassword: "Теперь введите пароль от аккаунта.",
	LinkSuccess:     "Готово! Telegram связан с вашим аккаунтом.",
	LinkCancelled:   "Привязка отменена.",
	LinkNothing:     "Нечего отменять.",

	Unauthorized:    "Требуется авторизация",
	RegisterSuccess: "Регистрация прошла успешно!",
	LoginSuccess:    "Вход выполнен успешно!",
}

// DefaultTasks are the maintenance jobs scheduled when none are configured.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
	"session_cleanup": {Enabled: true, Schedule: "0 */30 * * * *"},
}
