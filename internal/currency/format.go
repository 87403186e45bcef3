// Package currency renders invoice amounts: whole-unit grouped numbers and
// the spelled-out words form used as the formal rendering of a total.
//
// Both operations are total. Inputs that cannot be interpreted as numbers are
// echoed back, and a words conversion that cannot be performed falls back to
// the grouped number.
package currency

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// Formatter formats amounts for one currency and locale. It is immutable and
// safe for concurrent use.
type Formatter struct {
	grouping *money.Formatter
	speller  Speller
	suffix   string
}

// NewFormatter builds a Formatter from the currency configuration. An empty
// separator is taken from the ISO currency table; an unknown locale leaves
// the formatter without a speller, so AmountInWords always falls back.
func NewFormatter(cfg config.CurrencyConfig) *Formatter {
	separator := cfg.Separator
	if separator == "" {
		if c := money.GetCurrency(cfg.Code); c != nil {
			separator = c.Thousand
		}
	}

	speller, _ := SpellerFor(cfg.Locale)

	return &Formatter{
		// Fraction 0 and template "1": digits only, no grapheme.
		grouping: money.NewFormatter(0, "", separator, "", "1"),
		speller:  speller,
		suffix:   cfg.Suffix,
	}
}

// FormatAmount renders v rounded to the nearest whole unit (half to even)
// with thousands grouping, e.g. 1500000 -> "1.500.000".
//
// Non-numeric input is returned as its trimmed string form; nil and NaN
// render as "".
func (f *Formatter) FormatAmount(v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return strings.TrimSpace(types.Stringify(v))
	}
	return f.group(d)
}

// AmountInWords spells out the rounded total and appends the currency
// suffix, e.g. "Satu juta dua ratus ribu rupiah". Falls back to
// FormatAmount(total) when the words cannot be produced.
func (f *Formatter) AmountInWords(total decimal.Decimal) string {
	words, err := f.words(total)
	if err != nil {
		return f.FormatAmount(total)
	}
	return words
}

func (f *Formatter) words(total decimal.Decimal) (string, error) {
	if f.speller == nil {
		return "", ErrUnsupportedLocale
	}
	rounded := total.RoundBank(0)
	if !rounded.IsInteger() || rounded.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return "", ErrOutOfRange
	}
	words, err := f.speller.Spell(rounded.IntPart())
	if err != nil {
		return "", err
	}
	words = capitalize(words)
	if f.suffix != "" {
		words += " " + f.suffix
	}
	return words, nil
}

func (f *Formatter) group(d decimal.Decimal) string {
	rounded := d.RoundBank(0)
	if rounded.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		// Beyond int64: keep the digits, skip grouping.
		return rounded.String()
	}
	return f.grouping.Format(rounded.IntPart())
}

// maxDigits bounds the integer and fractional digits of a parsed amount.
// Exponent notation like "1e999999999" would otherwise expand to a billion
// digit integer when rounded.
const maxDigits = 30

// ParseAmount interprets s as a decimal number after trimming. Empty,
// non-numeric and non-finite inputs report ok == false, as do numbers with
// more than 30 integer or fractional digits.
func ParseAmount(s string) (d decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	exp := int64(d.Exponent())
	if int64(d.NumDigits())+exp > maxDigits || exp < -maxDigits {
		return decimal.Zero, false
	}
	return d, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return val, true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case float32:
		return toDecimal(float64(val))
	case string:
		return ParseAmount(val)
	default:
		return ParseAmount(types.Stringify(v))
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
