package callcache

import (
	"fmt"
	"math"
	"strconv"

	"github.com/unkn0wn-root/callcache/codec"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBytes
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Value is one of text, binary, integer or floating-point.
// The zero Value is invalid and rejected by Store.
type Value struct {
	kind Kind
	s    string
	b    []byte
	i    int64
	f    float64
}

// String is stored as its UTF-8 bytes.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes is stored verbatim.
func Bytes(b []byte) Value { return Value{kind: KindBytes, b: b} }

// Int is stored in base 10.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float is stored in codec.Float form ("3.0", "0.1", "1e+16").
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by a constructor rather than being
// the zero Value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// ValueOf maps a Go value onto a Value variant.
// Unsigned integers above math.MaxInt64 and every other type are rejected.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	default:
		return Value{}, &SerializationError{Type: fmt.Sprintf("%T", x), Reason: "unsupported type"}
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, &SerializationError{Type: "uint64", Reason: "overflows int64"}
	}
	return Int(int64(u)), nil
}

// Encode returns the literal stored form.
func (v Value) Encode() ([]byte, error) {
	switch v.kind {
	case KindString:
		return []byte(v.s), nil
	case KindBytes:
		if v.b == nil {
			return []byte{}, nil
		}
		return v.b, nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, &SerializationError{Type: "float64", Reason: "NaN and Inf have no stored form"}
		}
		return codec.AppendFloat(nil, v.f), nil
	default:
		return nil, &SerializationError{Type: "Value", Reason: "zero Value"}
	}
}

// String renders the literal stored form; invalid values render as "<invalid>".
func (v Value) String() string {
	b, err := v.Encode()
	if err != nil {
		if v.kind == KindFloat {
			return strconv.FormatFloat(v.f, 'g', -1, 64)
		}
		return "<invalid>"
	}
	return string(b)
}

// GoString renders v as a call-history argument: text and binary quoted,
// numbers bare.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindBytes:
		return "b" + strconv.Quote(string(v.b))
	default:
		return v.String()
	}
}

// renderArgs formats positional arguments as a tuple: ("a",) or (1, 2.5).
func renderArgs(args []Value) string {
	switch len(args) {
	case 0:
		return "()"
	case 1:
		return "(" + args[0].GoString() + ",)"
	}
	out := "("
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a.GoString()
	}
	return out + ")"
}
