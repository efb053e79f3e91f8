package keypad

import (
	"errors"
	"fmt"

	"github.com/vi13x/sats-wallet/internal/domain"
)

// MaxDigits bounds the magnitude of an entered amount.
const MaxDigits = 8

// Keys accepted by PushKey, in keypad order.
const (
	KeyDecimal   = "."
	KeyBackspace = "<"
)

// Layout is the keypad as rendered: three rows of digits, then ". 0 <".
var Layout = [][]string{
	{"1", "2", "3"},
	{"4", "5", "6"},
	{"7", "8", "9"},
	{KeyDecimal, "0", KeyBackspace},
}

var ErrInvalidDigit = errors.New("invalid digit")

// Entry accumulates an amount in sats one digit at a time.
// The zero value is an empty entry.
type Entry struct {
	value int64
}

func (e *Entry) Value() domain.Sats { return domain.Sats(e.value) }

func (e *Entry) IsZero() bool { return e.value == 0 }

// PushDigit appends d to the amount. The length guard is evaluated against
// value+1 rather than the resulting value, so an 8-digit amount can still grow
// to 9 digits unless it is 99,999,999. Out of range digits are ignored.
func (e *Entry) PushDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	if digitCount(e.value+1) > MaxDigits {
		return
	}
	e.value = e.value*10 + int64(d)
}

// PopDigit drops the last digit.
func (e *Entry) PopDigit() {
	e.value /= 10
}

func (e *Entry) Reset() {
	e.value = 0
}

// PushKey applies a keypad key. The decimal key is inert since amounts are
// entered in whole sats.
func (e *Entry) PushKey(key string) error {
	switch key {
	case KeyBackspace:
		e.PopDigit()
		return nil
	case KeyDecimal:
		return nil
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return fmt.Errorf("%w: %q", ErrInvalidDigit, key)
	}
	e.PushDigit(int(key[0] - '0'))
	return nil
}

func digitCount(n int64) int {
	if n < 0 {
		n = -n
	}
	c := 1
	for n >= 10 {
		n /= 10
		c++
	}
	return c
}
