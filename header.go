// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"encoding/binary"
	"math/bits"
)

// Node header encoding (§4.2 of the wire format).
//
// A node's body is preceded by a variable-length header giving the body's
// length in bytes, dispatched on the count of leading one-bits in the
// header's first byte:
//
//	0 leading ones: no header byte at all — the single following byte IS
//	                a 1-byte body (the "7-bit literal" optimization).
//	1 leading one:  1-byte header, low 6 bits are the body length (0..63).
//	                0x80 denotes an empty body; 0x81 denotes a 1-byte body
//	                whose value happens to be >= 0x80.
//	2..6 leading ones N: N-byte header, body length packed into the
//	                remaining bits across all N bytes.
//	7,8 leading ones N: one marker byte followed by N raw little-endian
//	                length bytes (N+1 header bytes in all).
//
// Builders only ever emit the N==8 form for bodies too long to pack (never
// N==7), but decodeNodeHeader accepts both since the wire format reserves
// the shape for either.

// makeHeader returns the header bytes that must precede body, or nil if
// body needs no header at all (the single-byte 7-bit literal case).
func makeHeader(body []byte) []byte {
	switch {
	case len(body) == 0:
		return []byte{0x80}
	case len(body) == 1:
		if body[0] < 0x80 {
			return nil
		}
		return []byte{0x81}
	default:
		n := uint64(len(body))
		count := (71 - bits.LeadingZeros64(n)) / 7
		if count > 6 {
			header := make([]byte, 9)
			header[0] = 0xff
			binary.LittleEndian.PutUint64(header[1:], n)
			return header
		}
		return packedHeader(n, count)
	}
}

// packedHeader builds the 1..6 byte packed-unary-prefix header for a body
// of length n, where count is the number of header bytes to use.
func packedHeader(n uint64, count int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n<<(uint(count)+1))
	buf[0] >>= uint(count) + 1
	buf[0] |= byte(0xff << (8 - count))
	header := make([]byte, count)
	copy(header, buf[:count])
	return header
}

// decodeNodeHeader reads the header at the front of buffer, returning the
// number of bytes the header itself occupies and the length of the body
// that follows it.
func decodeNodeHeader(buffer []byte) (headerLen int, bodyLen int, err error) {
	if len(buffer) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	leadingOnes := bits.LeadingZeros8(^buffer[0])
	switch leadingOnes {
	case 0:
		return 0, 1, nil
	case 1:
		return 1, int(buffer[0] & 0x3f), nil
	case 2, 3, 4, 5, 6:
		return decodeHeaderPacked(buffer, leadingOnes)
	default: // 7, 8
		return decodeHeaderRaw(buffer, leadingOnes)
	}
}

// decodeHeaderPacked decodes the 2..6-leading-ones packed header form.
func decodeHeaderPacked(buffer []byte, n int) (int, int, error) {
	if len(buffer) < n {
		return 0, 0, ErrUnexpectedEOF
	}
	var buf [8]byte
	copy(buf[:n], buffer[:n])
	buf[0] <<= uint(n) + 1
	value := binary.LittleEndian.Uint64(buf[:]) >> (uint(n) + 1)
	return n, int(value), nil
}

// decodeHeaderRaw decodes the 7/8-leading-ones raw little-endian length
// form: a one-byte marker followed by n raw length bytes.
func decodeHeaderRaw(buffer []byte, n int) (int, int, error) {
	if len(buffer) < n+1 {
		return 0, 0, ErrUnexpectedEOF
	}
	var buf [8]byte
	copy(buf[:n], buffer[1:n+1])
	value := binary.LittleEndian.Uint64(buf[:])
	return n + 1, int(value), nil
}
