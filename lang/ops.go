package lang

import (
	"log/slog"
	"strings"
)

// Apply evaluates the binary operator op on two already-evaluated operands.
//
// Arithmetic accepts Int and Bool operands (Bool counts as 0 or 1), Str + Str
// concatenation and Str * Int repetition. Comparisons accept the Int/Bool
// family or two Str operands. "and" and "or" select one of their operands by
// truthiness and never fail.
func Apply(op Operator, left, right Value) (Value, error) {
	switch op {
	case OpAnd:
		if !left.Truthy() {
			return left, nil
		}

		return right, nil

	case OpOr:
		if left.Truthy() {
			return left, nil
		}

		return right, nil

	case OpAdd:
		if l, r, ok := numeric(left, right); ok {
			return IntValue(l + r), nil
		}

		if left.kind == KindStr && right.kind == KindStr {
			return StrValue(left.s + right.s), nil
		}

		return Value{}, typeError("addition", left, right)

	case OpSub:
		if l, r, ok := numeric(left, right); ok {
			return IntValue(l - r), nil
		}

		return Value{}, typeError("subtraction", left, right)

	case OpMul:
		if l, r, ok := numeric(left, right); ok {
			return IntValue(l * r), nil
		}

		if left.kind == KindStr {
			if n, ok := asNumber(right); ok {
				return repeat(left.s, n)
			}
		}

		return Value{}, typeError("multiplication", left, right)

	case OpDiv:
		l, r, ok := numeric(left, right)
		if !ok {
			return Value{}, typeError("division", left, right)
		}

		if r == 0 {
			return Value{}, ErrDivisionByZero
		}

		return IntValue(l / r), nil

	case OpEq, OpNe, OpGt, OpLt, OpGe, OpLe:
		return compare(op, left, right)

	default:
		return Value{}, ErrType.Wrapf("unsupported operator %q", op.String())
	}
}

// MaxRepeatLen is the longest string that Str * Int repetition may produce.
const MaxRepeatLen = 1 << 24

func repeat(s string, n int) (Value, error) {
	if n <= 0 || s == "" {
		return StrValue(""), nil
	}

	if n > MaxRepeatLen/len(s) {
		return Value{}, ErrTooLarge.With(
			slog.Int("length", len(s)),
			slog.Int("count", n),
			slog.Int("max", MaxRepeatLen),
		)
	}

	return StrValue(strings.Repeat(s, n)), nil
}

// compare applies a comparison operator. ">=" and "<=" are the negations of
// "<" and ">" respectively.
func compare(op Operator, left, right Value) (Value, error) {
	var c int

	if l, r, ok := numeric(left, right); ok {
		c = cmpInt(l, r)
	} else if left.kind == KindStr && right.kind == KindStr {
		c = strings.Compare(left.s, right.s)
	} else {
		return Value{}, typeError("comparison", left, right).
			With(slog.String("operator", op.String()))
	}

	switch op {
	case OpEq:
		return BoolValue(c == 0), nil
	case OpNe:
		return BoolValue(c != 0), nil
	case OpGt:
		return BoolValue(c > 0), nil
	case OpLt:
		return BoolValue(c < 0), nil
	case OpGe:
		return BoolValue(!(c < 0)), nil
	default: // OpLe
		return BoolValue(!(c > 0)), nil
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// asNumber returns the integer value of an Int or Bool.
func asNumber(v Value) (int, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindBool:
		if v.b {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

// numeric returns both operands as integers if both are Int or Bool.
func numeric(left, right Value) (int, int, bool) {
	l, lok := asNumber(left)
	r, rok := asNumber(right)

	return l, r, lok && rok
}

func typeError(operation string, left, right Value) *Error {
	return ErrType.Wrapf("invalid types for %s", operation).With(
		slog.String("left", left.kind.String()),
		slog.String("right", right.kind.String()),
	)
}
