// Package codec produces ordered byte keys and byte values from typed
// column sequences. Every key and value begins with a 4-byte big-endian
// prefix: a TableId's numeric id for primary and association records, or
// the reserved DataKindPayload discriminator for row payload values. The
// remaining bytes are a concatenation of per-column encodings chosen so
// that byte-wise comparison under the engine's default comparator agrees
// with the element-wise comparison of the original typed values — see
// CompareKeys, which is exactly bytes.Compare and is what both the
// badger-backed store and the in-memory temporary store sort by.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tesseradb/tessera/pkg/schema"
)

// DataKindPayload is the reserved prefix written in place of a TableId
// for row payload values (as opposed to the keys that locate them). It
// is chosen far outside the range of table ids a session can allocate.
const DataKindPayload uint32 = 0xFFFFFFFF

// Key is an opaque, order-preserving byte key or value produced by this
// package. Its first four bytes are always the big-endian prefix.
type Key []byte

// Prefix returns the 4-byte numeric prefix this key was built with.
func (k Key) Prefix() uint32 {
	return binary.BigEndian.Uint32(k[:4])
}

// OverwritePrefix rewrites the key's leading prefix in place, letting the
// same encoded column bytes be addressed under a different table id —
// used by the insertion operator to reuse a main row's key bytes for
// each attached association without re-encoding the columns.
func (k Key) OverwritePrefix(id uint32) {
	binary.BigEndian.PutUint32(k[:4], id)
}

// Bytes returns the underlying byte slice.
func (k Key) Bytes() []byte { return []byte(k) }

// CompareKeys is the byte-level comparator every store in this engine is
// configured with. Because Encode produces order-preserving encodings,
// this plain lexicographic compare agrees with the logical tuple order
// (see Invariant 4 in the design notes).
func CompareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Encode serializes prefix followed by values (each encoded against its
// matching typing in typs) into an order-preserving Key.
func Encode(prefix uint32, values []schema.Value, typs []schema.Typing) (Key, error) {
	if len(values) != len(typs) {
		return nil, fmt.Errorf("codec: %d values but %d typings", len(values), len(typs))
	}
	var buf bytes.Buffer
	var prefixBytes [4]byte
	binary.BigEndian.PutUint32(prefixBytes[:], prefix)
	buf.Write(prefixBytes[:])
	for i, v := range values {
		if err := encodeValue(&buf, v, typs[i]); err != nil {
			return nil, fmt.Errorf("codec: column %d: %w", i, err)
		}
	}
	return Key(buf.Bytes()), nil
}

// presence bytes precede any nullable column's encoding so that Null
// values sort strictly before every present value of the same typing.
const (
	presenceNull    byte = 0x00
	presencePresent byte = 0x01
)

func encodeValue(buf *bytes.Buffer, v schema.Value, typ schema.Typing) error {
	if typ.IsNullable() {
		if v.IsNull() {
			buf.WriteByte(presenceNull)
			return nil
		}
		buf.WriteByte(presencePresent)
	} else if v.IsNull() {
		return fmt.Errorf("null value for non-nullable typing %s", typ)
	}

	if typ.IsList() {
		return encodeList(buf, v, typ.Elem())
	}

	name, _ := typ.PrimitiveName()
	switch name {
	case "Int":
		return encodeInt(buf, v)
	case "Float":
		return encodeFloat(buf, v)
	case "String":
		return encodeString(buf, v)
	case "Bool":
		return encodeBool(buf, v)
	default:
		return fmt.Errorf("unencodable primitive typing %q", name)
	}
}

func encodeInt(buf *bytes.Buffer, v schema.Value) error {
	if v.Kind != schema.KindInt {
		return fmt.Errorf("expected Int, got %s", v)
	}
	// XOR the sign bit so two's-complement ordering maps onto unsigned
	// byte ordering: negative numbers (sign bit 1) become the lower half.
	u := uint64(v.I) ^ (1 << 63)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	buf.Write(b[:])
	return nil
}

func encodeFloat(buf *bytes.Buffer, v schema.Value) error {
	if v.Kind != schema.KindFloat {
		return fmt.Errorf("expected Float, got %s", v)
	}
	bits := math.Float64bits(v.F)
	if bits&(1<<63) != 0 {
		// Negative: flip every bit so more-negative floats sort lower.
		bits = ^bits
	} else {
		// Non-negative: flip only the sign bit so they sort above negatives.
		bits |= 1 << 63
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bits)
	buf.Write(b[:])
	return nil
}

func encodeString(buf *bytes.Buffer, v schema.Value) error {
	if v.Kind != schema.KindString {
		return fmt.Errorf("expected String, got %s", v)
	}
	// A raw byte-for-byte write followed by a NUL terminator keeps shorter
	// strings ordered before longer strings that extend them, as long as
	// the string itself contains no NUL byte.
	buf.WriteString(v.S)
	buf.WriteByte(0x00)
	return nil
}

func encodeBool(buf *bytes.Buffer, v schema.Value) error {
	if v.Kind != schema.KindBool {
		return fmt.Errorf("expected Bool, got %s", v)
	}
	if v.B {
		buf.WriteByte(0x01)
	} else {
		buf.WriteByte(0x00)
	}
	return nil
}

// listContinue precedes every element's encoding; listEnd terminates the
// list. A length prefix would sort lists by length before comparing
// elements (a 2-element list with a small first element would then sort
// after a 1-element list with a larger one); writing a continuation byte
// per element and a lower terminator byte instead means the first
// differing element decides the order, and a list that is a true prefix
// of another sorts before it — same trick encodeString uses for strings.
const (
	listEnd      byte = 0x00
	listContinue byte = 0x01
)

func encodeList(buf *bytes.Buffer, v schema.Value, elemTyp schema.Typing) error {
	if v.Kind != schema.KindList {
		return fmt.Errorf("expected List, got %s", v)
	}
	for _, e := range v.L {
		buf.WriteByte(listContinue)
		if err := encodeValue(buf, e, elemTyp); err != nil {
			return err
		}
	}
	buf.WriteByte(listEnd)
	return nil
}
