// Package telegram posts ledger events to an operations chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type Bot struct {
	token   string
	baseURL string
	chatID  string
	client  *http.Client
}

func NewBot(token, chatID string) *Bot {
	return &Bot{
		token:   token,
		baseURL: "https://api.telegram.org/bot" + token,
		chatID:  chatID,
		client:  http.DefaultClient,
	}
}

func (b *Bot) SendMessage(ctx context.Context, chatID, text string) error {
	endpoint := b.baseURL + "/sendMessage"

	params := url.Values{}
	params.Add("chat_id", chatID)
	params.Add("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}

	return nil
}

// Publish sends a one-line summary of event to the configured chat.
func (b *Bot) Publish(ctx context.Context, event entity.LedgerEvent) error {
	return b.SendMessage(ctx, b.chatID, FormatEvent(event))
}

func (b *Bot) Close() error {
	return nil
}

func FormatEvent(event entity.LedgerEvent) string {
	switch event.Type {
	case entity.LedgerEventCreated:
		return fmt.Sprintf("Event #%d created by %s at height %d, ticket price %d",
			event.EventID, event.Caller, event.Height, event.Amount)
	case entity.LedgerTicketPurchased:
		return fmt.Sprintf("Ticket #%d for event #%d bought by %s for %d",
			event.TicketID, event.EventID, event.Caller, event.Amount)
	case entity.LedgerTicketValidated:
		return fmt.Sprintf("Ticket #%d for event #%d validated by %s",
			event.TicketID, event.EventID, event.Caller)
	case entity.LedgerTicketRefunded:
		return fmt.Sprintf("Ticket #%d for event #%d refunded to %s, %d returned",
			event.TicketID, event.EventID, event.Caller, event.Amount)
	case entity.LedgerPlatformFeeUpdated:
		return fmt.Sprintf("Platform fee set to %d%% by %s", event.Amount, event.Caller)
	case entity.LedgerMinTicketPriceUpdate:
		return fmt.Sprintf("Minimum ticket price set to %d by %s", event.Amount, event.Caller)
	default:
		return fmt.Sprintf("Ledger event %s at height %d", event.Type, event.Height)
	}
}
