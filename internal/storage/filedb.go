package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vi13x/sats-wallet/internal/domain"
)

var ErrNotFound = errors.New("not found")

// FileDB keeps the local node snapshot in a single JSON file.
type FileDB struct {
	mu   sync.RWMutex
	file *os.File
	snap *domain.NodeSnapshot
	path string
}

// OpenFileDB opens or creates the snapshot at path. A fresh snapshot is
// seeded by init.
func OpenFileDB(path string, init func(*domain.NodeSnapshot)) (*FileDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	db := &FileDB{file: f, path: path}
	if err := db.load(init); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return db, nil
}

func (db *FileDB) Close() error { return db.file.Close() }

func (db *FileDB) Path() string { return db.path }

func (db *FileDB) load(init func(*domain.NodeSnapshot)) error {
	info, err := db.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		db.snap = &domain.NodeSnapshot{
			Version:   1,
			Invoices:  map[string]*domain.Invoice{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if init != nil {
			init(db.snap)
		}
		return db.flushLocked()
	}
	var snap domain.NodeSnapshot
	if err := json.NewDecoder(db.file).Decode(&snap); err != nil {
		return err
	}
	if snap.Invoices == nil {
		snap.Invoices = map[string]*domain.Invoice{}
	}
	db.snap = &snap
	return nil
}

// Reload rereads the file, e.g. after a backup was restored over it.
func (db *FileDB) Reload() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, err := db.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return db.load(nil)
}

func (db *FileDB) flushLocked() error {
	if _, err := db.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(db.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(db.snap); err != nil {
		return err
	}
	// truncate in case new content is shorter
	pos, _ := db.file.Seek(0, io.SeekCurrent)
	if err := db.file.Truncate(pos); err != nil {
		return err
	}
	return db.file.Sync()
}

// Update runs fn under the write lock and persists the snapshot if fn succeeds.
func (db *FileDB) Update(ctx context.Context, fn func(*domain.NodeSnapshot) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := fn(db.snap); err != nil {
		return err
	}
	db.snap.UpdatedAt = time.Now()
	return db.flushLocked()
}

func (db *FileDB) View(fn func(*domain.NodeSnapshot) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.snap)
}

func (db *FileDB) Balance() domain.Sats {
	var out domain.Sats
	_ = db.View(func(s *domain.NodeSnapshot) error {
		out = s.Balance
		return nil
	})
	return out
}

func (db *FileDB) NodeID() string {
	var out string
	_ = db.View(func(s *domain.NodeSnapshot) error {
		out = s.NodeID
		return nil
	})
	return out
}

// ListPayments returns copies of the payments, newest first.
func (db *FileDB) ListPayments(limit int) []domain.Payment {
	var out []domain.Payment
	_ = db.View(func(s *domain.NodeSnapshot) error {
		for i := len(s.Payments) - 1; i >= 0; i-- {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, *s.Payments[i])
		}
		return nil
	})
	return out
}

func (db *FileDB) GetInvoice(encoded string) (*domain.Invoice, error) {
	var out *domain.Invoice
	_ = db.View(func(s *domain.NodeSnapshot) error {
		if inv, ok := s.Invoices[encoded]; ok {
			copy := *inv
			out = &copy
		}
		return nil
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}
