// Package bot serves the wallet over Telegram. Each chat gets its own payment
// composer and its own in-memory clipboard.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/format"
	"github.com/vi13x/sats-wallet/internal/keypad"
	"github.com/vi13x/sats-wallet/internal/service"
)

const helpText = `Commands:
/unlock <pin> - unlock this chat when the wallet has a PIN
/balance - your balance
/activity - payment history
/pay - open the keypad to request or pay
/invoice <invoice or node id> - put text on this chat's clipboard
/settle <invoice> - mark a local invoice paid
/settings [hide | currency <CODE>] - settings`

const (
	cbKey     = "k:"
	cbRequest = "a:request"
	cbPay     = "a:pay"
	cbClose   = "a:close"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type session struct {
	wallet   *service.Wallet
	composer *service.Composer
	clip     *clipboard.Memory

	unlocked bool
	attempts int
}

// locked reports whether the wallet has a PIN this chat has not entered.
func (s *session) locked() bool {
	return s.wallet.HasPIN() && !s.unlocked
}

func (s *session) unlock(pin string) string {
	if !s.locked() {
		return "Unlocked."
	}
	if s.attempts >= service.MaxPINAttempts {
		return "Too many attempts."
	}
	if err := s.wallet.VerifyPIN(pin); err != nil {
		s.attempts++
		return err.Error()
	}
	s.unlocked = true
	s.attempts = 0
	return "Unlocked."
}

type Bot struct {
	api  API
	deps service.Deps
	log  *zap.Logger

	// allowed limits the chats served; empty serves every chat.
	allowed map[int64]bool

	mu       sync.Mutex
	sessions map[int64]*session
}

// New builds a bot; deps.Clipboard is replaced per chat.
func New(api API, deps service.Deps, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	deps.Log = log
	return &Bot{api: api, deps: deps, log: log, allowed: map[int64]bool{}, sessions: map[int64]*session{}}
}

// AllowChats restricts the bot to the given chat ids.
func (b *Bot) AllowChats(ids ...int64) {
	for _, id := range ids {
		b.allowed[id] = true
	}
}

func (b *Bot) serves(chatID int64) bool {
	if len(b.allowed) == 0 || b.allowed[chatID] {
		return true
	}
	b.log.Warn("ignoring chat", zap.Int64("chat_id", chatID))
	return false
}

func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		clip := &clipboard.Memory{}
		d := b.deps
		d.Clipboard = clip
		w := service.NewWallet(d)
		s = &session{wallet: w, composer: w.NewComposer(), clip: clip}
		b.sessions[chatID] = s
	}
	return s
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && !b.serves(u.CallbackQuery.Message.Chat.ID):
	case u.Message != nil && !b.serves(u.Message.Chat.ID):
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.IsCommand():
		b.handleCommand(ctx, u.Message)
	case u.Message != nil:
		b.send(tgbotapi.NewMessage(u.Message.Chat.ID, "Use /help for the list of commands"))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	s := b.session(chatID)
	response := tgbotapi.NewMessage(chatID, "")

	cmd := msg.Command()
	if s.locked() && cmd != "start" && cmd != "help" && cmd != "unlock" {
		response.Text = "Wallet is locked. Use /unlock <pin>."
		b.send(response)
		return
	}

	switch cmd {
	case "start", "help":
		response.Text = helpText
	case "unlock":
		response.Text = s.unlock(strings.TrimSpace(msg.CommandArguments()))
	case "balance":
		response.Text = balanceText(ctx, s.wallet)
	case "activity":
		response.Text = activityText(ctx, s.wallet)
	case "pay":
		response.Text = composerText(s.composer.Display(), "")
		response.ReplyMarkup = keypadMarkup()
	case "invoice":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			response.Text = "Usage: /invoice <invoice or node id>"
			break
		}
		if err := s.clip.WriteText(args); err != nil {
			response.Text = "Error: " + err.Error()
			break
		}
		response.Text = "Clipboard set. Open /pay to pay it."
	case "settle":
		ok, err := s.wallet.Settle(ctx, strings.TrimSpace(msg.CommandArguments()))
		switch {
		case !ok:
			response.Text = "This backend cannot settle invoices."
		case err != nil:
			response.Text = "Error: " + err.Error()
		default:
			response.Text = "Settled."
		}
	case "settings":
		response.Text = settingsText(s.wallet, msg.CommandArguments())
	default:
		response.Text = "Unknown command"
	}
	b.send(response)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	s := b.session(chatID)
	if s.locked() {
		b.answer(cq.ID, "Wallet is locked. Use /unlock <pin>.")
		return
	}
	c := s.composer

	var status string
	switch data := cq.Data; {
	case strings.HasPrefix(data, cbKey):
		if err := c.Press(strings.TrimPrefix(data, cbKey)); err != nil {
			status = err.Error()
		}
	case data == cbRequest:
		inv, notice, err := c.Request(ctx, "")
		status = string(notice)
		if err == nil {
			b.send(tgbotapi.NewMessage(chatID, inv))
		}
	case data == cbPay:
		res, notice, err := c.Pay(ctx)
		status = string(notice)
		switch {
		case err != nil:
			status += ": " + err.Error()
		case !res.OK() && res.Reason != "":
			status += ": " + res.Reason
		}
	case data == cbClose:
		c.Close()
		b.answer(cq.ID, "")
		b.send(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, "Closed."))
		return
	}

	b.answer(cq.ID, status)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, composerText(c.Display(), status), keypadMarkup()))
}

func (b *Bot) answer(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Warn("answer callback", zap.Error(err))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("send message", zap.Error(err))
	}
}

func balanceText(ctx context.Context, w *service.Wallet) string {
	v, err := w.Balance(ctx)
	if err != nil {
		return "Your balance\n" + v.Sats
	}
	return fmt.Sprintf("Your balance\n%s\n%s", v.Sats, v.Fiat)
}

func activityText(ctx context.Context, w *service.Wallet) string {
	rows, err := w.Activity(ctx)
	if err != nil {
		return service.LabelLoading
	}
	if len(rows) == 0 {
		return service.LabelNoActivity
	}
	var sb strings.Builder
	for _, r := range rows {
		arrow := "⬆️"
		if r.Arrow == format.ArrowDown {
			arrow = "⬇️"
		}
		fmt.Fprintf(&sb, "%s %s  %s (%s)\n", arrow, r.Label, r.AmountSats, r.AmountFiat)
	}
	return sb.String()
}

func composerText(v service.ComposerView, status string) string {
	text := v.Title + "\n" + v.Subtitle
	if status != "" {
		text += "\n\n" + status
	}
	return text
}

func settingsText(w *service.Wallet, args string) string {
	fields := strings.Fields(args)
	switch {
	case len(fields) == 1 && fields[0] == "hide":
		hidden, err := w.ToggleHideBalance()
		if err != nil {
			return "Error: " + err.Error()
		}
		if hidden {
			return "Balance hidden."
		}
		return "Balance shown."
	case len(fields) == 2 && fields[0] == "currency":
		if err := w.SetCurrency(fields[1]); err != nil {
			return "Error: " + err.Error()
		}
		return "Currency set to " + strings.ToUpper(fields[1]) + "."
	}

	st := w.Settings()
	var sb strings.Builder
	for _, s := range service.Sections {
		sb.WriteString(string(s))
		switch s {
		case service.SectionGeneral:
			sb.WriteString(": currency " + st.Currency)
		case service.SectionPrivacy:
			fmt.Fprintf(&sb, ": balance hidden %v", st.HideBalance)
		case service.SectionSecurity:
			fmt.Fprintf(&sb, ": PIN set %v", w.HasPIN())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n/settings hide | /settings currency EUR")
	return sb.String()
}

func keypadMarkup() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keypad.Layout)+1)
	for _, line := range keypad.Layout {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(line))
		for _, k := range line {
			label := k
			if k == keypad.KeyBackspace {
				label = "⌫"
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbKey+k))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Request", cbRequest),
		tgbotapi.NewInlineKeyboardButtonData("Pay", cbPay),
		tgbotapi.NewInlineKeyboardButtonData("✖", cbClose),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
