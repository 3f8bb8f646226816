// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Flatbin reader", func() {
	It("round-trips a vector containing a bool, a string, a tuple, and void", func() {
		buf := NewFlatbinBuf()
		vec := NewBuilder(buf).StartVector()
		vec.WriteBool(true)
		vec.WriteStr("Hello world")
		tup := vec.StartTuple()
		tup.WriteBytes([]byte{4, 5, 6})
		tup.WriteBool(false)
		tup.End()
		vec.WriteVoid()
		vec.End()

		root := buf.Flatbin()
		seq, err := root.ReadArray()
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(4))

		item, ok := seq.Next()
		Expect(ok).To(BeTrue())
		b, err := item.ReadBool()
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(BeTrue())

		item, ok = seq.Next()
		Expect(ok).To(BeTrue())
		s, err := item.ReadStr()
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("Hello world"))

		item, ok = seq.Next()
		Expect(ok).To(BeTrue())
		innerSeq, err := item.ReadTuple(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(innerSeq.Len()).To(Equal(2))

		innerItem, ok := innerSeq.Next()
		Expect(ok).To(BeTrue())
		bs, err := innerItem.ReadBytes()
		Expect(err).NotTo(HaveOccurred())
		Expect(bs).To(Equal([]byte{4, 5, 6}))

		innerItem, ok = innerSeq.Next()
		Expect(ok).To(BeTrue())
		b2, err := innerItem.ReadBool()
		Expect(err).NotTo(HaveOccurred())
		Expect(b2).To(BeFalse())

		item, ok = seq.Next()
		Expect(ok).To(BeTrue())
		Expect(item.ReadVoid()).To(Succeed())

		_, ok = seq.Next()
		Expect(ok).To(BeFalse())
	})

	It("round-trips signed integers across the zig-zag boundary", func() {
		for _, value := range []int64{0, 1, -1, 2, -2, 12899, -12899, math.MinInt64, math.MaxInt64} {
			buf := NewFlatbinBuf()
			NewBuilder(buf).WriteI64(value)
			got, err := buf.Flatbin().ReadI64()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(value))
		}
	})

	It("round-trips floats", func() {
		buf := NewFlatbinBuf()
		NewBuilder(buf).WriteF64(3.14159)
		v, err := buf.Flatbin().ReadF64()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(3.14159))

		buf2 := NewFlatbinBuf()
		NewBuilder(buf2).WriteF32(2.5)
		v2, err := buf2.Flatbin().ReadF32()
		Expect(err).NotTo(HaveOccurred())
		Expect(v2).To(Equal(float32(2.5)))
	})

	It("rejects a string body that is not valid UTF-8", func() {
		f := FlatbinFromBytes([]byte{0xff, 0xfe})
		_, err := f.ReadStr()
		Expect(err).To(MatchError(ErrInvalidUTF8))
	})

	It("rejects a bool body that decodes to a number other than 0 or 1", func() {
		buf := NewFlatbinBuf()
		NewBuilder(buf).WriteU64(2)
		_, err := buf.Flatbin().ReadBool()
		Expect(err).To(MatchError(ErrNumberTooLarge))
	})

	It("reads an empty array without a count prefix", func() {
		buf := NewFlatbinBuf()
		vec := NewBuilder(buf).StartVector()
		vec.End()
		Expect(buf.Len()).To(Equal(0))

		seq, err := buf.Flatbin().ReadArray()
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.IsEmpty()).To(BeTrue())
		_, ok := seq.Next()
		Expect(ok).To(BeFalse())
	})

	It("Seek finds a headered child at a known offset", func() {
		buf := NewFlatbinBuf()
		vec := NewBuilder(buf).StartVector()
		vec.WriteU32(56)
		vec.WriteU32(99)
		vec.End()

		root := buf.Flatbin()
		seq, err := root.ReadArray()
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(2))

		// The first element sits right after the varint count prefix (1 byte).
		headerStart := 1
		child, err := root.Seek(headerStart)
		Expect(err).NotTo(HaveOccurred())
		v, err := child.ReadU32()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(56)))
	})
})
