package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest magnitude an Amount value may hold (2^62 - 1).
const MaxAmount int64 = 1<<62 - 1

// MaxPrecision is the largest number of decimal places a Symbol may carry.
const MaxPrecision uint8 = 18

var symbolCodePattern = regexp.MustCompile(`^[A-Z]{1,7}$`)

// SymbolCode is the short unique identifier of a currency, e.g. "TOK".
type SymbolCode string

// Validate checks the code against the allowed alphabet and length.
func (c SymbolCode) Validate() error {
	if !symbolCodePattern.MatchString(string(c)) {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "invalid symbol name %q", string(c))
	}
	return nil
}

func (c SymbolCode) String() string { return string(c) }

// Symbol pairs a currency code with its decimal precision.
type Symbol struct {
	Code      SymbolCode `json:"code"`
	Precision uint8      `json:"precision"`
}

// NewSymbol builds a validated Symbol.
func NewSymbol(code string, precision uint8) (Symbol, error) {
	sym := Symbol{Code: SymbolCode(code), Precision: precision}
	if err := sym.Validate(); err != nil {
		return Symbol{}, err
	}
	return sym, nil
}

// Validate checks both the code and the precision range.
func (s Symbol) Validate() error {
	if err := s.Code.Validate(); err != nil {
		return err
	}
	if s.Precision > MaxPrecision {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "precision %d exceeds %d", s.Precision, MaxPrecision)
	}
	return nil
}

// String renders the symbol as "precision,CODE".
func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// Amount is a fixed-point quantity of a single currency. Value counts the
// smallest unit, so 100.00 TOK with precision 2 is stored as 10000.
type Amount struct {
	Value  int64  `json:"value"`
	Symbol Symbol `json:"symbol"`
}

// NewAmount builds a validated Amount.
func NewAmount(value int64, sym Symbol) (Amount, error) {
	a := Amount{Value: value, Symbol: sym}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// ZeroAmount returns a zero quantity of sym.
func ZeroAmount(sym Symbol) Amount {
	return Amount{Symbol: sym}
}

// Validate checks the value range and the symbol.
func (a Amount) Validate() error {
	if err := a.Symbol.Validate(); err != nil {
		return err
	}
	if a.Value > MaxAmount || a.Value < -MaxAmount {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "magnitude of %d exceeds the maximum amount", a.Value)
	}
	return nil
}

// IsPositive reports whether the value is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.Value > 0 }

// IsZero reports whether the value is zero.
func (a Amount) IsZero() bool { return a.Value == 0 }

// Code is shorthand for a.Symbol.Code.
func (a Amount) Code() SymbolCode { return a.Symbol.Code }

// Add returns a+b, failing on symbol mismatch or when the result leaves the valid range.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.assertSameSymbol(b); err != nil {
		return Amount{}, err
	}
	// both operands are bounded by MaxAmount so the int64 sum cannot wrap
	sum := a.Value + b.Value
	if sum > MaxAmount {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "addition overflow")
	}
	if sum < -MaxAmount {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "addition underflow")
	}
	return Amount{Value: sum, Symbol: a.Symbol}, nil
}

// Sub returns a-b, failing on symbol mismatch or when the result leaves the valid range.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.assertSameSymbol(b); err != nil {
		return Amount{}, err
	}
	diff := a.Value - b.Value
	if diff > MaxAmount {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "subtraction overflow")
	}
	if diff < -MaxAmount {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "subtraction underflow")
	}
	return Amount{Value: diff, Symbol: a.Symbol}, nil
}

// LessThan compares two amounts of the same symbol.
func (a Amount) LessThan(b Amount) (bool, error) {
	if err := a.assertSameSymbol(b); err != nil {
		return false, err
	}
	return a.Value < b.Value, nil
}

func (a Amount) assertSameSymbol(b Amount) error {
	if a.Symbol != b.Symbol {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol mismatch: %s vs %s", a.Symbol, b.Symbol)
	}
	return nil
}

// Decimal returns the value scaled by the symbol precision.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Value, -int32(a.Symbol.Precision))
}

// String renders the amount as "100.00 TOK".
func (a Amount) String() string {
	return a.Decimal().StringFixed(int32(a.Symbol.Precision)) + " " + string(a.Symbol.Code)
}

// ParseAmount parses "100.00 TOK". The number of fractional digits sets the precision.
func ParseAmount(s string) (Amount, error) {
	parts := strings.Split(strings.TrimSpace(s), " ")
	if len(parts) != 2 {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount %q must be \"<number> <CODE>\"", s)
	}
	number, code := parts[0], parts[1]
	if strings.ContainsAny(number, "eE") {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount %q uses exponent notation", s)
	}

	precision := 0
	if dot := strings.IndexByte(number, '.'); dot >= 0 {
		precision = len(number) - dot - 1
		if precision == 0 {
			return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount %q has a trailing decimal point", s)
		}
	}
	if precision > int(MaxPrecision) {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "precision %d exceeds %d", precision, MaxPrecision)
	}

	sym, err := NewSymbol(code, uint8(precision))
	if err != nil {
		return Amount{}, err
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount %q is not a number", s)
	}
	scaled := d.Shift(int32(precision))
	limit := decimal.NewFromInt(MaxAmount)
	if scaled.GreaterThan(limit) || scaled.LessThan(limit.Neg()) {
		return Amount{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "magnitude of %s exceeds the maximum amount", s)
	}

	return NewAmount(scaled.IntPart(), sym)
}

// ParseSymbol parses "2,TOK".
func ParseSymbol(s string) (Symbol, error) {
	precision, code, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Symbol{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol %q must be \"<precision>,<CODE>\"", s)
	}
	p, err := strconv.ParseUint(precision, 10, 8)
	if err != nil {
		return Symbol{}, apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol %q has an invalid precision", s)
	}
	return NewSymbol(code, uint8(p))
}
