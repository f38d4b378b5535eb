package telegram

import (
	"context"
	"strconv"
	"strings"

	"market-monitor-bot/internal/alert"
	"market-monitor-bot/internal/commands"
	"market-monitor-bot/internal/types"
	"market-monitor-bot/lib/helpers"
	"market-monitor-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Handler turns chat commands into alert service and lookup calls
type Handler struct {
	alerts *alert.Service
	lookup *commands.Lookup
}

func NewHandler(alerts *alert.Service, lookup *commands.Lookup) *Handler {
	return &Handler{alerts: alerts, lookup: lookup}
}

// HandleUpdate returns the MarkdownV2 reply for a command message
func (h *Handler) HandleUpdate(ctx context.Context, u tgbotapi.Update) string {
	log.Debugf("received command: %s", u.Message.Command())
	return h.HandleCommand(ctx, u.Message.Chat.ID, u.Message.Command(), u.Message.CommandArguments())
}

// HandleCommand dispatches one command for a chat
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command, args string) string {
	var (
		text string
		err  error
	)

	switch command {
	case "start":
		return helpers.EscapeMarkdownV2(translation.Translate("Welcome to the Forex and Crypto Market Monitor Bot!😉"))
	case "forex":
		if text, err = h.lookup.CommandForex(ctx, args); err != nil {
			return lookupError(err, "Usage: /forex <from_currency> <to_currency>", "Error retrieving Forex data.")
		}
		return text
	case "crypto":
		if text, err = h.lookup.CommandCrypto(ctx, args); err != nil {
			return lookupError(err, "Usage: /crypto <crypto> <currency>", "Error retrieving Crypto data.")
		}
		return text
	case "alert":
		if strings.TrimSpace(args) == "list" {
			return h.HandleAlertListCommand(chatID)
		}
		return h.HandleAlertCommand(chatID, args)
	case "alerts":
		return h.HandleAlertListCommand(chatID)
	}

	return helpers.EscapeMarkdownV2(translation.Translate("Command help message"))
}

func lookupError(err error, usage, unavailable string) string {
	if errors.Is(err, commands.ErrUsage) {
		return helpers.EscapeMarkdownV2(translation.Translate(usage))
	}
	log.Error(err)
	return helpers.EscapeMarkdownV2(translation.Translate(unavailable))
}

// HandleAlertCommand handles "/alert <forex|crypto> <asset> <target_price>"
func (h *Handler) HandleAlertCommand(chatID int64, args string) string {
	usage := helpers.EscapeMarkdownV2(translation.Translate("Usage: /alert <forex|crypto> <asset> <target_price>"))

	fields := strings.Fields(args)
	if len(fields) != 3 {
		return usage
	}

	class, ok := types.ParseInstrumentClass(fields[0])
	if !ok {
		return usage
	}

	target, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return usage
	}

	a, err := h.alerts.AddAlert(SubscriberID(chatID), class, fields[1], target)
	if err != nil {
		log.Debugf("rejected alert from chat %d: %v", chatID, err)
		return usage
	}

	return translation.Translate("Alert set for %s at %s",
		helpers.EscapeMarkdownV2(a.Instrument),
		helpers.FormatPriceUS(a.Target, true),
	)
}

// HandleAlertListCommand lists the active alerts of a chat
func (h *Handler) HandleAlertListCommand(chatID int64) string {
	alerts := h.alerts.ListAlerts(SubscriberID(chatID))
	if len(alerts) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You have no active alerts."))
	}

	var alertList strings.Builder
	alertList.WriteString(helpers.EscapeMarkdownV2(translation.Translate("Your active alerts:")))
	alertList.WriteString("\n")
	for _, a := range alerts {
		alertList.WriteString(translation.Translate("▫️ %s %s at *%s* \\(set %s\\)\n",
			a.Class.String(),
			helpers.EscapeMarkdownV2(a.Instrument),
			helpers.FormatPriceUS(a.Target, true),
			helpers.FormatAge(a.CreatedAt),
		))
	}
	return alertList.String()
}
