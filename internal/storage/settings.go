package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Settings are the user preferences edited from the settings screen.
type Settings struct {
	Currency          string `json:"currency"`
	HideBalance       bool   `json:"hide_balance"`
	PINHash           string `json:"pin_hash,omitempty"`
	InvoiceExpirySecs uint32 `json:"invoice_expiry_secs"`
}

// SettingsFile guards a Settings value persisted as JSON.
type SettingsFile struct {
	mu   sync.Mutex
	path string
	cur  Settings
}

// OpenSettings loads path, falling back to defaults when the file is missing.
func OpenSettings(path string, defaults Settings) (*SettingsFile, error) {
	sf := &SettingsFile{path: path, cur: defaults}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sf, sf.saveLocked()
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &sf.cur); err != nil {
		return nil, err
	}
	return sf, nil
}

func (sf *SettingsFile) Get() Settings {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.cur
}

func (sf *SettingsFile) Update(fn func(*Settings)) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	next := sf.cur
	fn(&next)
	prev := sf.cur
	sf.cur = next
	if err := sf.saveLocked(); err != nil {
		sf.cur = prev
		return err
	}
	return nil
}

func (sf *SettingsFile) saveLocked() error {
	b, err := json.MarshalIndent(sf.cur, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sf.path, b, 0o600)
}
