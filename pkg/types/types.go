// Package types defines the column type system and the byte-level value
// representation shared by the catalog, record, and execution layers.
package types

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies the storage class of a column. Int and Float are always
// four bytes; FixedString carries a schema-declared byte length.
type Kind int

const (
	Int32 Kind = iota
	Float32
	FixedString
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "INT"
	case Float32:
		return "FLOAT"
	case FixedString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Coercible reports whether a value of kind src can be coerced to kind dst.
// Only INT<->FLOAT is coercible; string columns require an exact match.
func Coercible(src, dst Kind) bool {
	if src == dst {
		return true
	}
	return (src == Int32 || src == Float32) && (dst == Int32 || dst == Float32)
}

// Value is a tagged union over the three storage kinds. Exactly one of the
// scalar fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	I    int32
	F    float32
	S    []byte
}

func IntValue(i int32) Value   { return Value{Kind: Int32, I: i} }
func FloatValue(f float32) Value { return Value{Kind: Float32, F: f} }
func StrValue(s []byte) Value  { return Value{Kind: FixedString, S: s} }

// CoerceTo converts v to the target kind, truncating float-to-int toward
// zero. It returns an error if the kinds are not coercible.
func (v Value) CoerceTo(dst Kind) (Value, error) {
	if v.Kind == dst {
		return v, nil
	}
	if !Coercible(v.Kind, dst) {
		return Value{}, fmt.Errorf("cannot coerce %s to %s", v.Kind, dst)
	}
	switch dst {
	case Int32:
		if v.Kind == Float32 {
			return IntValue(int32(v.F)), nil
		}
	case Float32:
		if v.Kind == Int32 {
			return FloatValue(float32(v.I)), nil
		}
	}
	return Value{}, fmt.Errorf("cannot coerce %s to %s", v.Kind, dst)
}

// RawBytes renders v into a byte slice of exactly length bytes: little
// endian for numeric kinds, NUL-padded (or truncated) for strings.
func (v Value) RawBytes(length int) []byte {
	buf := make([]byte, length)
	switch v.Kind {
	case Int32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.I))
		copy(buf, tmp[:])
	case Float32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.F))
		copy(buf, tmp[:])
	case FixedString:
		copy(buf, v.S)
	}
	return buf
}

// ReadValue interprets raw[offset:offset+length] as a value of the given
// kind. It is the single centralized place that owns endianness and
// fixed-width field extraction; strings keep their NUL padding, which
// TrimNUL strips (spec design note: "keep an explicit helper
// read_value(row, col)").
func ReadValue(row []byte, offset, length int, kind Kind) Value {
	field := row[offset : offset+length]
	switch kind {
	case Int32:
		return IntValue(int32(binary.LittleEndian.Uint32(field)))
	case Float32:
		return FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(field)))
	default:
		out := make([]byte, length)
		copy(out, field)
		return StrValue(out)
	}
}

// TrimNUL trims trailing NUL bytes from a fixed-width string field.
func TrimNUL(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}
