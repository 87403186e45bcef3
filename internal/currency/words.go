package currency

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOutOfRange is returned when a number is too large to be spelled.
	ErrOutOfRange = errors.New("currency: number out of range")

	// ErrUnsupportedLocale is returned for locales without a speller.
	ErrUnsupportedLocale = errors.New("currency: unsupported locale")
)

// Speller converts an integer into the words of one numbering system.
type Speller interface {
	Spell(n int64) (string, error)
}

// SpellerFor returns the speller registered for locale ("id" or "en").
func SpellerFor(locale string) (Speller, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "id", "id_id", "id-id":
		return indonesian{}, nil
	case "en", "en_us", "en-us", "en_gb", "en-gb":
		return english{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
}

// scale is one named power of a thousand.
type scale struct {
	value int64
	name  string
}

// maxSpellable bounds both spellers: the largest named scale is 10^12, so
// anything from 10^15 up would need a name neither table has.
const maxSpellable int64 = 999_999_999_999_999

// =============================================================================
// INDONESIAN (terbilang)
// =============================================================================

type indonesian struct{}

var idUnits = [...]string{"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan"}

var idScales = []scale{
	{1_000_000_000_000, "triliun"},
	{1_000_000_000, "miliar"},
	{1_000_000, "juta"},
	{1_000, "ribu"},
}

// Spell renders n in Indonesian, lower case: 1200000 -> "satu juta dua
// ratus ribu", 1000 -> "seribu", 0 -> "nol".
func (indonesian) Spell(n int64) (string, error) {
	if n == 0 {
		return "nol", nil
	}
	if n < 0 {
		if n < -maxSpellable {
			return "", ErrOutOfRange
		}
		words, err := indonesian{}.Spell(-n)
		if err != nil {
			return "", err
		}
		return "min " + words, nil
	}
	if n > maxSpellable {
		return "", ErrOutOfRange
	}

	var parts []string
	for _, s := range idScales {
		group := n / s.value
		n %= s.value
		if group == 0 {
			continue
		}
		if group == 1 && s.value == 1_000 {
			parts = append(parts, "seribu")
			continue
		}
		parts = append(parts, idBelowThousand(group), s.name)
	}
	if n > 0 {
		parts = append(parts, idBelowThousand(n))
	}
	return strings.Join(parts, " "), nil
}

func idBelowThousand(n int64) string {
	var parts []string

	switch hundreds := n / 100; {
	case hundreds == 1:
		parts = append(parts, "seratus")
	case hundreds > 1:
		parts = append(parts, idUnits[hundreds], "ratus")
	}

	rest := n % 100
	switch {
	case rest == 0:
	case rest < 10:
		parts = append(parts, idUnits[rest])
	case rest == 10:
		parts = append(parts, "sepuluh")
	case rest == 11:
		parts = append(parts, "sebelas")
	case rest < 20:
		parts = append(parts, idUnits[rest-10], "belas")
	default:
		parts = append(parts, idUnits[rest/10], "puluh")
		if rest%10 != 0 {
			parts = append(parts, idUnits[rest%10])
		}
	}

	return strings.Join(parts, " ")
}

// =============================================================================
// ENGLISH
// =============================================================================

type english struct{}

var enOnes = [...]string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var enTens = [...]string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

var enScales = []scale{
	{1_000_000_000_000, "trillion"},
	{1_000_000_000, "billion"},
	{1_000_000, "million"},
	{1_000, "thousand"},
}

// Spell renders n in English, lower case: 1200000 -> "one million two
// hundred thousand".
func (english) Spell(n int64) (string, error) {
	if n == 0 {
		return "zero", nil
	}
	if n < 0 {
		if n < -maxSpellable {
			return "", ErrOutOfRange
		}
		words, err := english{}.Spell(-n)
		if err != nil {
			return "", err
		}
		return "minus " + words, nil
	}
	if n > maxSpellable {
		return "", ErrOutOfRange
	}

	var parts []string
	for _, s := range enScales {
		group := n / s.value
		n %= s.value
		if group == 0 {
			continue
		}
		parts = append(parts, enBelowThousand(group), s.name)
	}
	if n > 0 {
		parts = append(parts, enBelowThousand(n))
	}
	return strings.Join(parts, " "), nil
}

func enBelowThousand(n int64) string {
	var parts []string
	if hundreds := n / 100; hundreds > 0 {
		parts = append(parts, enOnes[hundreds], "hundred")
	}
	rest := n % 100
	switch {
	case rest == 0:
	case rest < 20:
		parts = append(parts, enOnes[rest])
	case rest%10 == 0:
		parts = append(parts, enTens[rest/10])
	default:
		parts = append(parts, enTens[rest/10]+"-"+enOnes[rest%10])
	}
	return strings.Join(parts, " ")
}
