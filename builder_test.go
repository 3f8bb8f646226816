// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("produces the exact byte layout for a mixed vector/tuple document", func() {
		buf := NewFlatbinBuf()
		builder := NewBuilder(buf)
		vec := builder.StartVector()
		vec.WriteU32(56)

		vec2 := vec.StartVector()
		vec2.WriteU32(30)
		vec2.WriteU32(60)
		vec2.End()

		vec3 := vec.StartVector()
		vec3.End()

		tup := vec.StartTuple()
		tup.WriteU32(40)
		tup.WriteStr("Hello")
		tup.WriteU32(50)
		tup.End()

		vec.WriteU32(12899)
		vec.End()

		Expect(buf.Bytes()).To(Equal([]byte{
			5,       // Vector length = 5
			56,      // 7-bit optimized uint
			128 + 3, // Node size = 3
			2,       // Vector length = 2
			30,      // 7-bit optimized uint
			60,      // 7-bit optimized uint
			128,     // Node size = 0 (empty vector)
			128 + 8, // Node size = 8
			40,      // 7-bit optimized uint
			128 + 5, // Node size = 5
			'H', 'e', 'l', 'l', 'o',
			50,                      // 7-bit optimized uint
			12899 % 256, 12899 / 256, // last element, node size elided
		}))
	})

	It("writes an empty top-level vector as just the absent length prefix", func() {
		buf := NewFlatbinBuf()
		vec := NewBuilder(buf).StartVector()
		count := vec.End()
		Expect(count).To(Equal(0))
		Expect(buf.Bytes()).To(BeEmpty())
	})

	It("elides the varint count prefix until End is called", func() {
		buf := NewFlatbinBuf()
		vec := NewBuilder(buf).StartVector()
		vec.WriteBool(true)
		Expect(buf.Bytes()).To(Equal([]byte{1}))
		vec.End()
		Expect(buf.Bytes()).To(Equal([]byte{1, 1}))
	})
})
