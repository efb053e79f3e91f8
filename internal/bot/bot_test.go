package bot_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/backend"
	"github.com/vi13x/sats-wallet/internal/bot"
	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/service"
	"github.com/vi13x/sats-wallet/internal/storage"
)

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	callbacks []tgbotapi.CallbackConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// lastText returns the text of the last message or edit sent.
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

func newBot(t *testing.T, balance int64) (*bot.Bot, *fakeAPI, *backend.LocalNode) {
	t.Helper()
	return newBotWithPIN(t, balance, "")
}

// newBotWithPIN protects the wallet with pin unless it is empty.
func newBotWithPIN(t *testing.T, balance int64, pin string) (*bot.Bot, *fakeAPI, *backend.LocalNode) {
	t.Helper()

	dir := t.TempDir()
	db, err := storage.OpenFileDB(filepath.Join(dir, "node.json"), backend.SeedNode(domain.Sats(balance)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ratesPath := filepath.Join(dir, "rates.json")
	require.NoError(t, storage.EnsureRatesFile(ratesPath))
	settings, err := storage.OpenSettings(filepath.Join(dir, "settings.json"), storage.Settings{Currency: "USD"})
	require.NoError(t, err)

	node := backend.NewLocalNode(db, zap.NewNop())
	deps := service.Deps{
		Backend:   node,
		Settings:  settings,
		RatesPath: ratesPath,
	}
	if pin != "" {
		require.NoError(t, service.NewWallet(deps).SetPIN(pin))
	}
	api := &fakeAPI{}
	return bot.New(api, deps, zap.NewNop()), api, node
}

func command(chatID int64, text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func press(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestBalanceAndActivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, api, _ := newBot(t, 21_763)

	b.HandleUpdate(ctx, command(1, "/balance"))
	require.Equal(t, "Your balance\n21,763 sats\n$6.31", api.lastText(t))

	b.HandleUpdate(ctx, command(1, "/activity"))
	require.Equal(t, service.LabelNoActivity, api.lastText(t))
}

func TestKeypadRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, api, node := newBot(t, 0)

	b.HandleUpdate(ctx, command(1, "/pay"))
	require.Equal(t, "0 sats\n"+service.PlaceholderAmount, api.lastText(t))

	for _, k := range []string{"4", "2", "0", "<"} {
		b.HandleUpdate(ctx, press(1, "k:"+k))
	}
	require.Equal(t, "42 sats\n$0.01", api.lastText(t))

	b.HandleUpdate(ctx, press(1, "a:request"))
	require.Contains(t, api.lastText(t), "0 sats\nEnter amount\n\nCopied")

	ps, err := node.Payments(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.EqualValues(t, 42_000, ps[0].AmountMsat)
}

func TestKeypadPayPerChatClipboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, api, node := newBot(t, 1_000)

	b.HandleUpdate(ctx, command(1, "/invoice "+backend.NewNodeID()))
	b.HandleUpdate(ctx, press(1, "k:5"))

	// another chat has an empty clipboard
	b.HandleUpdate(ctx, press(2, "a:pay"))
	require.Contains(t, api.lastText(t), string(service.NoticeFailed))

	b.HandleUpdate(ctx, press(1, "a:pay"))
	require.Contains(t, api.lastText(t), string(service.NoticeSent))

	bal, err := node.Balance(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 995, bal)
}

func TestSettingsCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, api, _ := newBot(t, 100_000_000)

	b.HandleUpdate(ctx, command(1, "/settings"))
	require.Contains(t, api.lastText(t), "Help & Support")

	b.HandleUpdate(ctx, command(1, "/settings currency gbp"))
	require.Equal(t, "Currency set to GBP.", api.lastText(t))

	b.HandleUpdate(ctx, command(1, "/balance"))
	require.Contains(t, api.lastText(t), "£22,800")

	b.HandleUpdate(ctx, command(1, "/settings hide"))
	require.Equal(t, "Balance hidden.", api.lastText(t))
}

func (f *fakeAPI) lastCallback(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.callbacks)
	return f.callbacks[len(f.callbacks)-1].Text
}

func TestPINLocksChats(t *testing.T) {
	t.Parallel()

	t.Run("PaymentRefusedUntilUnlocked", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b, api, node := newBotWithPIN(t, 1_000, "1234")

		b.HandleUpdate(ctx, command(999, "/invoice "+backend.NewNodeID()))
		require.Contains(t, api.lastText(t), "locked")

		for _, k := range []string{"5", "0", "0"} {
			b.HandleUpdate(ctx, press(999, "k:"+k))
		}
		b.HandleUpdate(ctx, press(999, "a:pay"))
		require.Contains(t, api.lastCallback(t), "locked")

		b.HandleUpdate(ctx, command(999, "/settings hide"))
		require.Contains(t, api.lastText(t), "locked")

		bal, err := node.Balance(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1_000, bal)

		b.HandleUpdate(ctx, command(999, "/unlock 1234"))
		require.Equal(t, "Unlocked.", api.lastText(t))

		b.HandleUpdate(ctx, command(999, "/invoice "+backend.NewNodeID()))
		for _, k := range []string{"5", "0", "0"} {
			b.HandleUpdate(ctx, press(999, "k:"+k))
		}
		b.HandleUpdate(ctx, press(999, "a:pay"))
		require.Contains(t, api.lastText(t), string(service.NoticeSent))

		bal, err = node.Balance(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 500, bal)
	})

	t.Run("AttemptsAreCapped", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b, api, _ := newBotWithPIN(t, 0, "1234")

		for n := 0; n < service.MaxPINAttempts; n++ {
			b.HandleUpdate(ctx, command(1, "/unlock 0000"))
			require.Equal(t, service.ErrWrongPIN.Error(), api.lastText(t))
		}
		b.HandleUpdate(ctx, command(1, "/unlock 1234"))
		require.Equal(t, "Too many attempts.", api.lastText(t))

		// other chats keep their own counter
		b.HandleUpdate(ctx, command(2, "/unlock 1234"))
		require.Equal(t, "Unlocked.", api.lastText(t))
	})
}

func TestAllowChats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, api, _ := newBot(t, 10)
	b.AllowChats(7)

	b.HandleUpdate(ctx, command(8, "/balance"))
	require.Empty(t, api.sent)

	b.HandleUpdate(ctx, command(7, "/balance"))
	require.Contains(t, api.lastText(t), "10 sats")
}
