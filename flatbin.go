// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// FlatbinBuf owns an encoded document's bytes. It is the root a Builder
// writes into and the root a Flatbin view is taken from for reading.
type FlatbinBuf struct {
	data []byte
}

// NewFlatbinBuf returns an empty, ready-to-write buffer.
func NewFlatbinBuf() *FlatbinBuf {
	return &FlatbinBuf{}
}

// Len returns the number of encoded bytes currently in the buffer.
func (b *FlatbinBuf) Len() int {
	return len(b.data)
}

// Clear truncates the buffer back to empty, retaining its capacity.
func (b *FlatbinBuf) Clear() {
	b.data = b.data[:0]
}

// Bytes returns the raw encoded bytes.
func (b *FlatbinBuf) Bytes() []byte {
	return b.data
}

// Flatbin returns a read-only view over the whole buffer.
func (b *FlatbinBuf) Flatbin() *Flatbin {
	return &Flatbin{data: b.data}
}

// Flatbin is a read-only view over a single node's body bytes. Reading it
// is meaningless without already knowing, out of band, what Ty the bytes
// were written against.
type Flatbin struct {
	data []byte
}

// FlatbinFromBytes wraps an existing byte slice as a Flatbin view, without
// copying it.
func FlatbinFromBytes(data []byte) *Flatbin {
	return &Flatbin{data: data}
}

// Bytes returns the node's raw body bytes.
func (f *Flatbin) Bytes() []byte {
	return f.data
}

// ReadVoid validates that the node's body is empty.
func (f *Flatbin) ReadVoid() error {
	if len(f.data) != 0 {
		return ErrUnexpectedLength
	}
	return nil
}

// ReadBool reads the node's body as the left-padded unsigned integer 0 or 1.
func (f *Flatbin) ReadBool() (bool, error) {
	v, err := f.ReadUint()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrNumberTooLarge
	}
}

// ReadUint reads the node's body as a left-padded little-endian unsigned
// integer of up to 8 bytes.
func (f *Flatbin) ReadUint() (uint64, error) {
	if len(f.data) > 8 {
		return 0, ErrUnexpectedLength
	}
	var buf [8]byte
	copy(buf[:], f.data)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadU8 reads the node's body as ReadUint, requiring it to fit in a byte.
func (f *Flatbin) ReadU8() (uint8, error) {
	v, err := f.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, ErrNumberTooLarge
	}
	return uint8(v), nil
}

// ReadU16 reads the node's body as ReadUint, requiring it to fit in 16 bits.
func (f *Flatbin) ReadU16() (uint16, error) {
	v, err := f.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		return 0, ErrNumberTooLarge
	}
	return uint16(v), nil
}

// ReadU32 reads the node's body as ReadUint, requiring it to fit in 32 bits.
func (f *Flatbin) ReadU32() (uint32, error) {
	v, err := f.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrNumberTooLarge
	}
	return uint32(v), nil
}

// ReadU64 reads the node's body as a 64-bit unsigned integer.
func (f *Flatbin) ReadU64() (uint64, error) {
	return f.ReadUint()
}

// ReadInt reads the node's body as a zig-zag encoded signed integer.
func (f *Flatbin) ReadInt() (int64, error) {
	v, err := f.ReadUint()
	if err != nil {
		return 0, err
	}
	if v&1 == 0 {
		return int64(v >> 1), nil
	}
	return ^int64(v >> 1), nil
}

// ReadI8 reads the node's body as ReadInt, requiring it to fit in a byte.
func (f *Flatbin) ReadI8() (int8, error) {
	v, err := f.ReadInt()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, ErrNumberTooLarge
	}
	return int8(v), nil
}

// ReadI16 reads the node's body as ReadInt, requiring it to fit in 16 bits.
func (f *Flatbin) ReadI16() (int16, error) {
	v, err := f.ReadInt()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, ErrNumberTooLarge
	}
	return int16(v), nil
}

// ReadI32 reads the node's body as ReadInt, requiring it to fit in 32 bits.
func (f *Flatbin) ReadI32() (int32, error) {
	v, err := f.ReadInt()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, ErrNumberTooLarge
	}
	return int32(v), nil
}

// ReadI64 reads the node's body as a zig-zag encoded 64-bit signed integer.
func (f *Flatbin) ReadI64() (int64, error) {
	return f.ReadInt()
}

// ReadF32 reads the node's body as a 4-byte little-endian IEEE-754 float.
func (f *Flatbin) ReadF32() (float32, error) {
	if len(f.data) != 4 {
		return 0, ErrUnexpectedLength
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(f.data)), nil
}

// ReadF64 reads the node's body as an 8-byte little-endian IEEE-754 float.
func (f *Flatbin) ReadF64() (float64, error) {
	if len(f.data) != 8 {
		return 0, ErrUnexpectedLength
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(f.data)), nil
}

// ReadBytes returns the node's body verbatim.
func (f *Flatbin) ReadBytes() ([]byte, error) {
	return f.data, nil
}

// ReadStr reads the node's body as a UTF-8 string.
func (f *Flatbin) ReadStr() (string, error) {
	if !utf8.Valid(f.data) {
		return "", ErrInvalidUTF8
	}
	return string(f.data), nil
}

// ReadTuple interprets the node's body as a fixed-arity sequence of count
// children, each of whose boundaries is determined by headers except the
// last, which runs to the end of the body.
func (f *Flatbin) ReadTuple(count int) (Sequence, error) {
	return Sequence{count: count, data: f.data}, nil
}

// ReadArray interprets the node's body as a length-prefixed sequence: a
// leading varint element count (omitted entirely when the array is empty)
// followed by the same headered-except-last child layout as ReadTuple.
func (f *Flatbin) ReadArray() (Sequence, error) {
	data := f.data
	if len(data) == 0 {
		return Sequence{count: 0, data: data}, nil
	}
	count, err := readVarint(&data)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{count: int(count), data: data}, nil
}

// Seek interprets the bytes at offset within the node's body as a single
// headered child and returns a view over its body.
func (f *Flatbin) Seek(offset int) (*Flatbin, error) {
	if offset > len(f.data) {
		return nil, ErrUnexpectedEOF
	}
	data := f.data[offset:]
	headerLen, bodyLen, err := decodeNodeHeader(data)
	if err != nil {
		return nil, err
	}
	if headerLen+bodyLen > len(data) {
		return nil, ErrUnexpectedEOF
	}
	return FlatbinFromBytes(data[headerLen : headerLen+bodyLen]), nil
}

// Sequence is a cursor over a fixed-length run of sibling nodes inside a
// tuple or array body. It is consumed by repeated calls to Next, in the
// manner of a bufio.Scanner.
type Sequence struct {
	count int
	data  []byte
}

// Len returns the number of elements remaining in the sequence.
func (s Sequence) Len() int {
	return s.count
}

// IsEmpty reports whether the sequence has no elements remaining.
func (s Sequence) IsEmpty() bool {
	return s.count == 0
}

// Next returns the next element and advances the cursor, or reports false
// once the sequence is exhausted. A malformed header on a non-final element
// does not fail Next itself; it yields an empty node, deferring the error
// to whatever Read call is attempted against that node.
func (s *Sequence) Next() (*Flatbin, bool) {
	switch s.count {
	case 0:
		return nil, false
	case 1:
		item := FlatbinFromBytes(s.data)
		s.count = 0
		s.data = nil
		return item, true
	default:
		headerLen, bodyLen, err := decodeNodeHeader(s.data)
		if err != nil || headerLen+bodyLen > len(s.data) {
			headerLen, bodyLen = 0, 0
		}
		item := s.data[headerLen : headerLen+bodyLen]
		s.data = s.data[headerLen+bodyLen:]
		s.count--
		return FlatbinFromBytes(item), true
	}
}
