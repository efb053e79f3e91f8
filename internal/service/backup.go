package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/format"
)

const backupPrefix = "node-"

// BackupNow copies the node file into the backups directory and returns the
// backup name.
func (w *Wallet) BackupNow() (string, error) {
	if w.nodeDB == nil || w.backupsDir == "" {
		return "", ErrBackupsDisabled
	}
	if err := os.MkdirAll(w.backupsDir, 0o755); err != nil {
		return "", err
	}
	name := backupPrefix + time.Now().Format("20060102-150405.000") + ".json"
	in, err := os.ReadFile(w.nodeDB.Path())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(w.backupsDir, name), in, 0o600); err != nil {
		return "", err
	}
	w.log.Info("backup written", zap.String("name", name))
	return name, nil
}

func (w *Wallet) ListBackups() ([]string, error) {
	if w.nodeDB == nil || w.backupsDir == "" {
		return nil, ErrBackupsDisabled
	}
	ents, err := os.ReadDir(w.backupsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".json") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// RestoreBackup overwrites the node file with a backup and reloads it.
func (w *Wallet) RestoreBackup(name string) error {
	if w.nodeDB == nil || w.backupsDir == "" {
		return ErrBackupsDisabled
	}
	if name != filepath.Base(name) || !strings.HasPrefix(name, backupPrefix) {
		return fmt.Errorf("bad backup name %q", name)
	}
	bts, err := os.ReadFile(filepath.Join(w.backupsDir, name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.nodeDB.Path(), bts, 0o600); err != nil {
		return err
	}
	if err := w.nodeDB.Reload(); err != nil {
		return fmt.Errorf("reload node: %w", err)
	}
	w.log.Info("backup restored", zap.String("name", name))
	return nil
}

// ExportActivityCSV writes the payment history to outPath.
func (w *Wallet) ExportActivityCSV(ctx context.Context, outPath string) (string, error) {
	ps, err := w.backend.Payments(ctx)
	if err != nil {
		return "", err
	}
	now := w.now()
	rows := [][]string{{"payment_id", "direction", "status", "amount_msat", "amount_sats", "date", "label", "description"}}
	for _, p := range ps {
		rows = append(rows, []string{
			string(p.ID),
			string(p.Direction),
			string(p.Status),
			strconv.FormatInt(int64(p.AmountMsat), 10),
			strconv.FormatInt(int64(p.AmountMsat.Sats()), 10),
			p.Date.Format(time.RFC3339),
			format.RelativeDateLabel(p, now),
			p.Description,
		})
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", outPath, err)
	}
	return outPath, nil
}
