// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// Builder appends a single node to an encoded buffer. Each Builder value is
// one-shot: call exactly one of its Write* methods, or exactly one of
// StartTuple/StartVector, and then discard it. Calling more than one write
// method on the same Builder corrupts the buffer, the same way writing
// twice through a single Rust Builder would be a compile error there; Go
// has no affine types to enforce this, so it is a runtime contract instead.
type Builder struct {
	buf *[]byte

	// lastChild points at the parent sequence's bookkeeping slot: the byte
	// offset where the previously-written sibling's body began, or -1 if
	// there is no previous sibling yet. nil means this Builder has no
	// parent sequence at all (the top-level, single-node builder).
	lastChild *int

	// count points at the parent VectorBuilder's running element count, or
	// nil when the parent is a TupleBuilder (fixed arity, no count needed)
	// or there is no parent.
	count *int
}

// NewBuilder returns a Builder that appends the document's single root node
// to buf.
func NewBuilder(buf *FlatbinBuf) Builder {
	return Builder{buf: &buf.data}
}

// beginWrite runs the shared bookkeeping for every write: it retroactively
// splices a header in front of the previous sibling (now that its length is
// known) and records where the new sibling's body begins. The new sibling
// itself never gets a header here — that happens, if at all, the next time
// beginWrite runs for the sibling after it.
func (b Builder) beginWrite() {
	if b.lastChild != nil {
		if *b.lastChild >= 0 {
			offset := *b.lastChild
			header := makeHeader((*b.buf)[offset:])
			spliceInsert(b.buf, offset, header)
		}
		*b.lastChild = len(*b.buf)
	}
	if b.count != nil {
		*b.count++
	}
}

// WriteVoid writes the empty scalar.
func (b Builder) WriteVoid() {
	b.beginWrite()
}

// WriteBool writes a boolean as the left-padded unsigned integer 0 or 1.
func (b Builder) WriteBool(value bool) {
	if value {
		b.WriteU8(1)
	} else {
		b.WriteU8(0)
	}
}

// WriteU8 writes a single raw byte as the node's body.
func (b Builder) WriteU8(value uint8) {
	b.beginWrite()
	*b.buf = append(*b.buf, value)
}

// WriteU16 writes value using the minimal-byte-count unsigned encoding.
func (b Builder) WriteU16(value uint16) {
	b.WriteU64(uint64(value))
}

// WriteU32 writes value using the minimal-byte-count unsigned encoding.
func (b Builder) WriteU32(value uint32) {
	b.WriteU64(uint64(value))
}

// WriteU64 writes value as a left-padded little-endian unsigned integer,
// using only as many bytes as value needs (zero bytes for zero).
func (b Builder) WriteU64(value uint64) {
	b.beginWrite()
	count := minLEByteCount(value)
	var bytes [8]byte
	binary.LittleEndian.PutUint64(bytes[:], value)
	*b.buf = append(*b.buf, bytes[:count]...)
}

// WriteI64 zig-zag encodes value and writes it as WriteU64 would.
func (b Builder) WriteI64(value int64) {
	b.WriteU64(zigzagEncode(value))
}

// WriteF32 writes value as 4 little-endian IEEE-754 bytes.
func (b Builder) WriteF32(value float32) {
	b.WriteBytes(float32ToBytes(value))
}

// WriteF64 writes value as 8 little-endian IEEE-754 bytes.
func (b Builder) WriteF64(value float64) {
	b.WriteBytes(float64ToBytes(value))
}

// WriteBytes writes bytes verbatim as the node's body.
func (b Builder) WriteBytes(bytes []byte) {
	b.beginWrite()
	*b.buf = append(*b.buf, bytes...)
}

// WriteStr writes str's UTF-8 bytes as the node's body.
func (b Builder) WriteStr(str string) {
	b.WriteBytes([]byte(str))
}

// Copy writes another node's body bytes verbatim, duplicating it as a new
// sibling node.
func (b Builder) Copy(other *Flatbin) {
	b.WriteBytes(other.Bytes())
}

// StartTuple begins a fixed-arity sequence node: every subsequent write
// through the returned TupleBuilder, up to End, becomes one positional
// element.
func (b Builder) StartTuple() *TupleBuilder {
	b.beginWrite()
	return newTupleBuilder(b.buf)
}

// StartVector begins a variable-length sequence node: every subsequent
// write through the returned VectorBuilder, up to End, becomes one element,
// and the element count is prepended as a varint once End is called.
func (b Builder) StartVector() *VectorBuilder {
	b.beginWrite()
	return newVectorBuilder(b.buf)
}

// minLEByteCount returns how many little-endian bytes are needed to hold
// value without leading zero bytes; 0 for value == 0.
func minLEByteCount(value uint64) int {
	if value == 0 {
		return 0
	}
	significantBits := 64 - bits.LeadingZeros64(value)
	return (significantBits + 7) / 8
}

// TupleBuilder writes a fixed-arity sequence of positional elements.
type TupleBuilder struct {
	buf       *[]byte
	lastChild int
}

func newTupleBuilder(buf *[]byte) *TupleBuilder {
	return &TupleBuilder{buf: buf, lastChild: -1}
}

// AsBuilder returns a one-shot Builder for the tuple's next element.
func (t *TupleBuilder) AsBuilder() Builder {
	return Builder{buf: t.buf, lastChild: &t.lastChild}
}

// WriteVoid writes the next element as the empty scalar.
func (t *TupleBuilder) WriteVoid() { t.AsBuilder().WriteVoid() }

// WriteBool writes the next element as a boolean.
func (t *TupleBuilder) WriteBool(value bool) { t.AsBuilder().WriteBool(value) }

// WriteU32 writes the next element as an unsigned integer.
func (t *TupleBuilder) WriteU32(value uint32) { t.AsBuilder().WriteU32(value) }

// WriteU64 writes the next element as an unsigned integer.
func (t *TupleBuilder) WriteU64(value uint64) { t.AsBuilder().WriteU64(value) }

// WriteI64 writes the next element as a signed integer.
func (t *TupleBuilder) WriteI64(value int64) { t.AsBuilder().WriteI64(value) }

// WriteF64 writes the next element as a float.
func (t *TupleBuilder) WriteF64(value float64) { t.AsBuilder().WriteF64(value) }

// WriteBytes writes the next element as raw bytes.
func (t *TupleBuilder) WriteBytes(bytes []byte) { t.AsBuilder().WriteBytes(bytes) }

// WriteStr writes the next element as a string.
func (t *TupleBuilder) WriteStr(str string) { t.AsBuilder().WriteStr(str) }

// Copy writes another node's body bytes verbatim as the next element.
func (t *TupleBuilder) Copy(other *Flatbin) { t.AsBuilder().Copy(other) }

// StartTuple begins a nested tuple as the next element.
func (t *TupleBuilder) StartTuple() *TupleBuilder { return t.AsBuilder().StartTuple() }

// StartVector begins a nested vector as the next element.
func (t *TupleBuilder) StartVector() *VectorBuilder { return t.AsBuilder().StartVector() }

// End finishes the tuple. It performs no bookkeeping of its own — the
// tuple's final element is already headerless by construction — but its
// presence makes the lifetime of a TupleBuilder explicit at call sites, the
// way the Rust original's Drop-based scope did implicitly.
func (t *TupleBuilder) End() {}

// VectorBuilder writes a variable-length sequence of elements.
type VectorBuilder struct {
	buf       *[]byte
	start     int
	count     int
	lastChild int
}

func newVectorBuilder(buf *[]byte) *VectorBuilder {
	return &VectorBuilder{buf: buf, start: len(*buf), lastChild: -1}
}

// AsBuilder returns a one-shot Builder for the vector's next element.
func (v *VectorBuilder) AsBuilder() Builder {
	return Builder{buf: v.buf, lastChild: &v.lastChild, count: &v.count}
}

// WriteVoid writes the next element as the empty scalar.
func (v *VectorBuilder) WriteVoid() { v.AsBuilder().WriteVoid() }

// WriteBool writes the next element as a boolean.
func (v *VectorBuilder) WriteBool(value bool) { v.AsBuilder().WriteBool(value) }

// WriteU32 writes the next element as an unsigned integer.
func (v *VectorBuilder) WriteU32(value uint32) { v.AsBuilder().WriteU32(value) }

// WriteU64 writes the next element as an unsigned integer.
func (v *VectorBuilder) WriteU64(value uint64) { v.AsBuilder().WriteU64(value) }

// WriteI64 writes the next element as a signed integer.
func (v *VectorBuilder) WriteI64(value int64) { v.AsBuilder().WriteI64(value) }

// WriteF64 writes the next element as a float.
func (v *VectorBuilder) WriteF64(value float64) { v.AsBuilder().WriteF64(value) }

// WriteBytes writes the next element as raw bytes.
func (v *VectorBuilder) WriteBytes(bytes []byte) { v.AsBuilder().WriteBytes(bytes) }

// WriteStr writes the next element as a string.
func (v *VectorBuilder) WriteStr(str string) { v.AsBuilder().WriteStr(str) }

// Copy writes another node's body bytes verbatim as the next element.
func (v *VectorBuilder) Copy(other *Flatbin) { v.AsBuilder().Copy(other) }

// StartTuple begins a nested tuple as the next element.
func (v *VectorBuilder) StartTuple() *TupleBuilder { return v.AsBuilder().StartTuple() }

// StartVector begins a nested vector as the next element.
func (v *VectorBuilder) StartVector() *VectorBuilder { return v.AsBuilder().StartVector() }

// Count returns the number of elements written so far.
func (v *VectorBuilder) Count() int { return v.count }

// End finishes the vector, prepending its element count as a varint ahead
// of the elements (omitted entirely for an empty vector, matching
// ReadArray's treatment of a zero-length body), and returns the count.
func (v *VectorBuilder) End() int {
	if v.count > 0 {
		prefix := encodeVarint(uint64(v.count))
		spliceInsert(v.buf, v.start, prefix.bytes())
	}
	return v.count
}

// zigzagEncode maps a signed integer onto the unsigned integers so that
// small-magnitude values of either sign stay small: 0, -1, 1, -2, 2, ...
// becomes 0, 1, 2, 3, 4, ... It is the inverse of Flatbin.ReadInt.
func zigzagEncode(value int64) uint64 {
	if value < 0 {
		return ^uint64(value << 1)
	}
	return uint64(value << 1)
}

// float32ToBytes returns value's 4-byte little-endian IEEE-754 bit pattern.
func float32ToBytes(value float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(value))
	return buf[:]
}

// float64ToBytes returns value's 8-byte little-endian IEEE-754 bit pattern.
func float64ToBytes(value float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	return buf[:]
}

// spliceInsert inserts content into *buf starting at index at, shifting the
// existing tail to make room, without any extra allocation beyond the
// slice's own growth.
func spliceInsert(buf *[]byte, at int, content []byte) {
	if len(content) == 0 {
		return
	}
	b := *buf
	n := len(content)
	b = append(b, content...)
	copy(b[at+n:], b[at:len(b)-n])
	copy(b[at:at+n], content)
	*buf = b
}
