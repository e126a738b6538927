package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

func TestPublishPostsToChat(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bot := NewBot("token", "-100")
	bot.baseURL = srv.URL + "/bottoken"
	bot.client = srv.Client()

	err := bot.Publish(context.Background(), entity.LedgerEvent{
		Type:     entity.LedgerTicketRefunded,
		Caller:   "bob",
		EventID:  3,
		TicketID: 9,
		Amount:   1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "/bottoken/sendMessage", gotPath)
	assert.Equal(t, "-100", gotChat)
	assert.Equal(t, "Ticket #9 for event #3 refunded to bob, 1500 returned", gotText)
}

func TestPublishReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	bot := NewBot("token", "-100")
	bot.baseURL = srv.URL
	bot.client = srv.Client()

	err := bot.Publish(context.Background(), entity.LedgerEvent{Type: entity.LedgerPlatformFeeUpdated, Amount: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "Platform fee set to 7% by platform",
		FormatEvent(entity.LedgerEvent{Type: entity.LedgerPlatformFeeUpdated, Amount: 7, Caller: "platform"}))
	assert.Equal(t, "Event #1 created by alice at height 10, ticket price 2000",
		FormatEvent(entity.LedgerEvent{Type: entity.LedgerEventCreated, EventID: 1, Caller: "alice", Height: 10, Amount: 2000}))
}
