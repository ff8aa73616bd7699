package codec

import (
	"bytes"
	"math"
	"strconv"
)

// Bytes is an identity codec for []byte values.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String converts to and from string. Assumes UTF-8, performs no validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }

// Int uses base-10 text, the form Redis keeps integers in.
// Decode returns the *strconv.NumError unchanged on bad input.
type Int struct{}

func (Int) Encode(i int64) ([]byte, error) { return strconv.AppendInt(nil, i, 10), nil }
func (Int) Decode(b []byte) (int64, error) { return strconv.ParseInt(string(b), 10, 64) }

// Float writes the shortest digits that round-trip a float64, always marked
// as a float: 3 is "3.0", 1234567 is "1234567.0". Decimal exponents outside
// [-4, 16) switch to exponent form ("1e+16", "1e-05").
type Float struct{}

func (Float) Encode(f float64) ([]byte, error) { return AppendFloat(nil, f), nil }
func (Float) Decode(b []byte) (float64, error) { return strconv.ParseFloat(string(b), 64) }

// AppendFloat appends the Float form of f to dst.
func AppendFloat(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.AppendFloat(dst, f, 'g', -1, 64)
	}
	sci := strconv.AppendFloat(nil, f, 'e', -1, 64)
	i := bytes.LastIndexByte(sci, 'e')
	exp, _ := strconv.Atoi(string(sci[i+1:]))
	if exp < -4 || exp >= 16 {
		return append(dst, sci...)
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, 64)
	if bytes.IndexByte(dst[start:], '.') < 0 {
		dst = append(dst, ".0"...)
	}
	return dst
}
