package keypad_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/vi13x/sats-wallet/internal/domain"
	"github.com/vi13x/sats-wallet/internal/keypad"
)

func entryWith(t *testing.T, digits ...int) *keypad.Entry {
	t.Helper()

	e := &keypad.Entry{}
	for _, d := range digits {
		e.PushDigit(d)
	}

	return e
}

func TestPushDigit(t *testing.T) {
	t.Parallel()

	t.Run("StartsAtZero", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var e keypad.Entry
		i.True(e.IsZero())
		i.Equal(domain.Sats(0), e.Value())
	})

	t.Run("ConcatenatesDigits", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 2, 1, 7, 6, 3)
		i.Equal(domain.Sats(21763), e.Value())
	})

	t.Run("LeadingZerosCollapse", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 0, 0, 5)
		i.Equal(domain.Sats(5), e.Value())
	})

	t.Run("SevenDigitsAccepted", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 9, 9, 9, 9, 9, 9, 9)
		i.Equal(domain.Sats(9_999_999), e.Value())

		e.PushDigit(9)
		i.Equal(domain.Sats(99_999_999), e.Value())
	})

	t.Run("AllNinesEightDigitsRejected", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 9, 9, 9, 9, 9, 9, 9, 9)
		i.Equal(domain.Sats(99_999_999), e.Value())

		e.PushDigit(1)
		i.Equal(domain.Sats(99_999_999), e.Value())
	})

	t.Run("OtherEightDigitsGrowToNine", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 1, 2, 3, 4, 5, 6, 7, 8)
		e.PushDigit(9)
		i.Equal(domain.Sats(123_456_789), e.Value())

		// 123,456,790 has nine digits so nothing more fits.
		e.PushDigit(0)
		i.Equal(domain.Sats(123_456_789), e.Value())
	})

	t.Run("OutOfRangeIgnored", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 4)
		e.PushDigit(-1)
		e.PushDigit(10)
		i.Equal(domain.Sats(4), e.Value())
	})
}

func TestPopDigit(t *testing.T) {
	t.Parallel()

	t.Run("Truncates", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		e := entryWith(t, 2, 1, 7)
		e.PopDigit()
		i.Equal(domain.Sats(21), e.Value())
	})

	t.Run("ZeroStaysZero", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var e keypad.Entry
		e.PopDigit()
		i.True(e.IsZero())
	})

	t.Run("UndoesAcceptedPush", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		for _, n := range []int{0, 1, 42, 9_999, 1_234_567, 12_345_678} {
			for d := 0; d <= 9; d++ {
				e := &keypad.Entry{}
				for _, c := range digitsOf(n) {
					e.PushDigit(c)
				}

				before := e.Value()
				e.PushDigit(d)
				if e.Value() == before && !(before == 0 && d == 0) {
					continue
				}

				e.PopDigit()
				i.Equal(before, e.Value())
			}
		}
	})
}

func TestPushKey(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	var e keypad.Entry
	for _, k := range []string{"1", "0", ".", "5", "<", "7"} {
		i.NoErr(e.PushKey(k))
	}
	i.Equal(domain.Sats(107), e.Value())

	err := e.PushKey("x")
	i.True(errors.Is(err, keypad.ErrInvalidDigit))
	i.Equal(`invalid digit: "x"`, err.Error())

	e.Reset()
	i.True(e.IsZero())
}

func digitsOf(n int) []int {
	if n == 0 {
		return []int{0}
	}

	var out []int
	for ; n > 0; n /= 10 {
		out = append([]int{n % 10}, out...)
	}

	return out
}
