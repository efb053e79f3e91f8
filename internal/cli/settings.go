package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vi13x/sats-wallet/internal/service"
)

func (ui *UI) settings(ctx context.Context) {
	for {
		fmt.Fprintln(ui.out, "\n=== Settings ===")
		for i, s := range service.Sections {
			fmt.Fprintf(ui.out, "%d) %s\n", i+1, s)
		}
		fmt.Fprintln(ui.out, "0) Back")
		fmt.Fprint(ui.out, "> ")
		line, ok := ui.readLine()
		if !ok {
			return
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &n); err != nil || n < 1 || n > len(service.Sections) {
			return
		}
		switch service.Sections[n-1] {
		case service.SectionGeneral:
			ui.general()
		case service.SectionFees:
			fmt.Fprintln(ui.out, service.FeesText)
		case service.SectionPrivacy:
			ui.privacy()
		case service.SectionSecurity:
			ui.security()
		case service.SectionBackup:
			ui.backup()
		case service.SectionHelp:
			fmt.Fprintln(ui.out, service.HelpText)
		case service.SectionAdvanced:
			ui.advanced(ctx)
		}
	}
}

func (ui *UI) general() {
	fmt.Fprintln(ui.out, "1) Show rates  2) Set rate  3) Display currency")
	fmt.Fprint(ui.out, "> ")
	choice, _ := ui.readLine()
	switch strings.TrimSpace(choice) {
	case "1":
		ui.showRates()
	case "2":
		ui.setRate()
	case "3":
		fmt.Fprint(ui.out, "Currency (e.g. EUR): ")
		cur, _ := ui.readLine()
		if err := ui.wallet.SetCurrency(cur); err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Ok.")
	}
}

func (ui *UI) showRates() {
	r, err := ui.wallet.GetRates()
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	fmt.Fprintf(ui.out, "Base: %s  Updated: %s\n", r.Base, r.UpdatedAt.Format(time.RFC3339))
	curs := make([]string, 0, len(r.Pairs))
	for cur := range r.Pairs {
		curs = append(curs, cur)
	}
	sort.Strings(curs)
	current := ui.wallet.Settings().Currency
	for _, cur := range curs {
		mark := " "
		if cur == current {
			mark = "*"
		}
		fmt.Fprintf(ui.out, "%s %s : %s\n", mark, cur, r.Pairs[cur].String())
	}
}

func (ui *UI) setRate() {
	fmt.Fprint(ui.out, "Currency (e.g. USD): ")
	cur, _ := ui.readLine()
	cur = strings.TrimSpace(cur)
	fmt.Fprintf(ui.out, "Price of 1 BTC in %s: ", cur)
	raw, _ := ui.readLine()
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	if err := ui.wallet.SetRate(cur, rate); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	fmt.Fprintln(ui.out, "Ok.")
}

func (ui *UI) privacy() {
	hidden, err := ui.wallet.ToggleHideBalance()
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	if hidden {
		fmt.Fprintln(ui.out, "Balance hidden.")
	} else {
		fmt.Fprintln(ui.out, "Balance shown.")
	}
}

func (ui *UI) security() {
	if ui.wallet.HasPIN() {
		fmt.Fprint(ui.out, "Current PIN (to remove it): ")
		pin, _ := ui.readLine()
		if err := ui.wallet.ClearPIN(strings.TrimSpace(pin)); err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "PIN removed.")
		return
	}
	fmt.Fprint(ui.out, "New PIN (4-8 digits): ")
	pin, _ := ui.readLine()
	if err := ui.wallet.SetPIN(strings.TrimSpace(pin)); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	fmt.Fprintln(ui.out, "PIN set.")
}

func (ui *UI) backup() {
	fmt.Fprintln(ui.out, "1) Backup now  2) List backups  3) Restore")
	fmt.Fprint(ui.out, "> ")
	choice, _ := ui.readLine()
	switch strings.TrimSpace(choice) {
	case "1":
		name, err := ui.wallet.BackupNow()
		if err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Backup created:", name)
	case "2":
		list, err := ui.wallet.ListBackups()
		if err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		if len(list) == 0 {
			fmt.Fprintln(ui.out, "No backups.")
			return
		}
		for i, n := range list {
			fmt.Fprintf(ui.out, "%d) %s\n", i+1, n)
		}
	case "3":
		fmt.Fprint(ui.out, "Backup name: ")
		name, _ := ui.readLine()
		if err := ui.wallet.RestoreBackup(strings.TrimSpace(name)); err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Restored.")
	}
}

func (ui *UI) advanced(ctx context.Context) {
	fmt.Fprintln(ui.out, "1) Export activity (CSV)  2) Settle invoice (local node)")
	fmt.Fprint(ui.out, "> ")
	choice, _ := ui.readLine()
	switch strings.TrimSpace(choice) {
	case "1":
		path := filepath.Join(ui.reportsDir, fmt.Sprintf("activity_%s.csv", time.Now().Format("20060102_150405")))
		p, err := ui.wallet.ExportActivityCSV(ctx, path)
		if err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Saved:", p)
	case "2":
		fmt.Fprint(ui.out, "Invoice: ")
		inv, _ := ui.readLine()
		ok, err := ui.wallet.Settle(ctx, strings.TrimSpace(inv))
		switch {
		case !ok:
			fmt.Fprintln(ui.out, "Backend cannot settle invoices.")
		case err != nil:
			fmt.Fprintln(ui.out, "Error:", err)
		default:
			fmt.Fprintln(ui.out, "Settled.")
		}
	}
}
