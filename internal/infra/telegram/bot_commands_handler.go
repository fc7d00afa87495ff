// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands registers /start and /help.
func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send("Review cycle service is running. Use /help to see the available commands.")
		}
		logCtx.Info("User is not the configured admin")
		return c.Send("This bot is reserved for review cycle administrators.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != adminTelegramID {
			return c.Send("No commands are available to you.")
		}
		return c.Send(adminHelpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func adminHelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/cycles`\n - List cycles with their stored and computed phase.\n\n")
	helpText.WriteString("`/cycle <CycleID>`\n - Show phase windows and evaluation counts.\n\n")
	helpText.WriteString("`/launch <CycleID>`\n - Queue self and manager-pair evaluations. Rejected later if already launched.\n\n")
	helpText.WriteString("`/launch_leader <CycleID>`\n - Queue leader evaluations.\n\n")
	helpText.WriteString("`/sweep`\n - Run the phase transition sweep now.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
