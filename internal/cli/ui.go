package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/format"
	"github.com/vi13x/sats-wallet/internal/service"
)

// Screen is one of the navigation bar destinations.
type Screen int

const (
	ScreenQuit Screen = iota
	ScreenPayments
	ScreenActivity
	ScreenSettings
)

var ErrLocked = errors.New("wallet locked")

type UI struct {
	wallet     *service.Wallet
	clip       clipboard.Clipboard
	reportsDir string
	in         *bufio.Reader
	out        io.Writer
}

func NewUI(w *service.Wallet, clip clipboard.Clipboard, reportsDir string, in *bufio.Reader, out io.Writer) *UI {
	return &UI{wallet: w, clip: clip, reportsDir: reportsDir, in: in, out: out}
}

// Run unlocks the wallet and routes between screens until the user quits or
// input ends.
func (ui *UI) Run(ctx context.Context) error {
	if err := ui.unlock(); err != nil {
		return err
	}
	screen := ScreenActivity
	for screen != ScreenQuit {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch screen {
		case ScreenPayments:
			ui.payments(ctx)
		case ScreenActivity:
			ui.activity(ctx)
		case ScreenSettings:
			ui.settings(ctx)
		}
		screen = ui.selectScreen()
	}
	return nil
}

func (ui *UI) selectScreen() Screen {
	fmt.Fprintln(ui.out, "\n1) Payments  2) Activity  3) Settings  0) Quit")
	fmt.Fprint(ui.out, "> ")
	line, ok := ui.readLine()
	if !ok {
		return ScreenQuit
	}
	switch strings.TrimSpace(line) {
	case "1":
		return ScreenPayments
	case "2":
		return ScreenActivity
	case "3":
		return ScreenSettings
	default:
		return ScreenQuit
	}
}

func (ui *UI) unlock() error {
	if !ui.wallet.HasPIN() {
		return nil
	}
	for i := 0; i < service.MaxPINAttempts; i++ {
		fmt.Fprint(ui.out, "PIN: ")
		pin, ok := ui.readLine()
		if !ok {
			return ErrLocked
		}
		if err := ui.wallet.VerifyPIN(strings.TrimSpace(pin)); err == nil {
			return nil
		}
		fmt.Fprintln(ui.out, service.ErrWrongPIN)
	}
	return ErrLocked
}

func (ui *UI) activity(ctx context.Context) {
	fmt.Fprintln(ui.out, "\n=== Activity ===")
	fmt.Fprintln(ui.out, "Your balance")
	bal, err := ui.wallet.Balance(ctx)
	fmt.Fprintln(ui.out, bal.Sats)
	if bal.Loaded {
		fmt.Fprintln(ui.out, bal.Fiat)
	}
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}

	rows, err := ui.wallet.Activity(ctx)
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(ui.out, service.LabelNoActivity)
		return
	}
	for _, r := range rows {
		fmt.Fprintf(ui.out, "%s %-16s %20s %12s\n", arrowGlyph(r.Arrow), r.Label, r.AmountSats, r.AmountFiat)
	}
}

func (ui *UI) payments(ctx context.Context) {
	c := ui.wallet.NewComposer()
	defer c.Close()

	fmt.Fprintln(ui.out, "\n=== Payments ===")
	fmt.Fprintln(ui.out, "digits / < / . edit the amount; r) request  p) pay  c) paste invoice  b) back")
	for {
		v := c.Display()
		fmt.Fprintf(ui.out, "\n%s\n%s\n> ", v.Title, v.Subtitle)
		line, ok := ui.readLine()
		if !ok {
			return
		}
		switch cmd := strings.TrimSpace(line); cmd {
		case "b", "":
			return
		case "r":
			fmt.Fprint(ui.out, "Description: ")
			desc, _ := ui.readLine()
			inv, notice, err := c.Request(ctx, strings.TrimSpace(desc))
			fmt.Fprintln(ui.out, notice)
			if err != nil {
				fmt.Fprintln(ui.out, "Error:", err)
				continue
			}
			fmt.Fprintln(ui.out, inv)
		case "p":
			res, notice, err := c.Pay(ctx)
			fmt.Fprintln(ui.out, notice)
			if err != nil {
				fmt.Fprintln(ui.out, "Error:", err)
			} else if !res.OK() && res.Reason != "" {
				fmt.Fprintln(ui.out, res.Reason)
			}
		case "c":
			fmt.Fprint(ui.out, "Invoice or node id: ")
			text, _ := ui.readLine()
			if err := ui.clip.WriteText(strings.TrimSpace(text)); err != nil {
				fmt.Fprintln(ui.out, "Error:", err)
			}
		default:
			for _, k := range cmd {
				if err := c.Press(string(k)); err != nil {
					fmt.Fprintln(ui.out, "Error:", err)
					break
				}
			}
		}
	}
}

func arrowGlyph(a format.Arrow) string {
	if a == format.ArrowDown {
		return "↓"
	}
	return "↑"
}

// readLine returns false once input is exhausted.
func (ui *UI) readLine() (string, bool) {
	s, err := ui.in.ReadString('\n')
	if err != nil && s == "" {
		return "", false
	}
	return strings.TrimRight(s, "\r\n"), true
}
