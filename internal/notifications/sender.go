package notifications

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
	gomail "gopkg.in/mail.v2"

	"github.com/padely/padely/internal/announce"
)

// Telegram allows roughly 30 messages a minute per chat.
const telegramSendInterval = 2 * time.Second

// ----- Email -----

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
}

// EmailSender mails announcements. Nil-safe: a nil sender sends nothing.
type EmailSender struct {
	cfg    EmailConfig
	logger *slog.Logger
}

// NewEmailSender returns nil when no SMTP server or recipient is set.
func NewEmailSender(cfg EmailConfig, logger *slog.Logger) *EmailSender {
	if cfg.SMTPServer == "" || cfg.ToEmail == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailSender{cfg: cfg, logger: logger}
}

func (s *EmailSender) Name() string { return "email" }

// Send delivers a plain text mail with an HTML alternative.
func (s *EmailSender) Send(ctx context.Context, a announce.Announcement) error {
	if s == nil {
		return nil
	}
	m := buildEmail(s.cfg, a)

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", s.cfg.ToEmail, err)
	}
	s.logger.Info("Email sent", "subject", a.Title, "match_id", a.MatchID)
	return nil
}

func buildEmail(cfg EmailConfig, a announce.Announcement) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.FromEmail)
	m.SetHeader("To", cfg.ToEmail)
	m.SetHeader("Subject", a.Title)
	m.SetBody("text/plain", a.Text)
	m.AddAlternative("text/html", fmt.Sprintf("<p><strong>%s</strong></p><p>%s</p>",
		html.EscapeString(a.Title), html.EscapeString(a.Text)))
	return m
}

// ----- Telegram -----

// TelegramSender posts announcements to one chat, at most one message per
// telegramSendInterval. Nil-safe.
type TelegramSender struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewTelegramSender authorizes the bot. It returns nil, nil when token is
// empty.
func NewTelegramSender(token string, chatID int64, logger *slog.Logger) (*TelegramSender, error) {
	if token == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	logger.Info("Telegram bot authorized", "account", bot.Self.UserName, "chat_id", chatID)

	return &TelegramSender{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(telegramSendInterval), 1),
		logger:  logger,
	}, nil
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, a announce.Announcement) error {
	if s == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}
	msg := tgbotapi.NewMessage(s.chatID, telegramText(a))
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func telegramText(a announce.Announcement) string {
	if a.Title == "" {
		return a.Text
	}
	return a.Title + "\n" + a.Text
}

// Sinks collects the configured senders, skipping nil ones.
func Sinks(email *EmailSender, telegram *TelegramSender) []Sink {
	var out []Sink
	if email != nil {
		out = append(out, email)
	}
	if telegram != nil {
		out = append(out, telegram)
	}
	return out
}
