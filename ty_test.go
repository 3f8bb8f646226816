// Copyright (c) 2024 Neomantra Corp

package flatbin_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neomantra/flatbin-go"
)

var _ = Describe("Ty", func() {
	It("builds scalar kinds", func() {
		Expect(flatbin.Bool().Kind).To(Equal(flatbin.Kind_Bool))
		Expect(flatbin.U64().Kind).To(Equal(flatbin.Kind_U64))
		Expect(flatbin.I64().Kind).To(Equal(flatbin.Kind_I64))
		Expect(flatbin.F64().Kind).To(Equal(flatbin.Kind_F64))
		Expect(flatbin.Bytes().Kind).To(Equal(flatbin.Kind_Bytes))
		Expect(flatbin.String().Kind).To(Equal(flatbin.Kind_String))
		Expect(flatbin.Void().Kind).To(Equal(flatbin.Kind_Void))
	})

	It("builds an array type carrying its inner type", func() {
		ty := flatbin.ArrayOf(flatbin.U64())
		Expect(ty.Kind).To(Equal(flatbin.Kind_Array))
		Expect(ty.Inner).NotTo(BeNil())
		Expect(ty.Inner.Kind).To(Equal(flatbin.Kind_U64))
	})

	It("builds a struct type preserving field order", func() {
		ty := flatbin.StructOf(
			flatbin.Field{Name: "name", Ty: flatbin.String()},
			flatbin.Field{Name: "age", Ty: flatbin.U64()},
		)
		Expect(ty.Kind).To(Equal(flatbin.Kind_Struct))
		Expect(ty.Fields).To(HaveLen(2))
		Expect(ty.Fields[0].Name).To(Equal("name"))
		Expect(ty.Fields[1].Name).To(Equal("age"))
	})

	It("panics when two fields share a name", func() {
		Expect(func() {
			flatbin.StructOf(
				flatbin.Field{Name: "a", Ty: flatbin.U64()},
				flatbin.Field{Name: "a", Ty: flatbin.String()},
			)
		}).To(Panic())
	})

	It("supports nested struct/array composition", func() {
		ty := flatbin.StructOf(
			flatbin.Field{Name: "hobbies", Ty: flatbin.ArrayOf(flatbin.String())},
		)
		Expect(ty.Fields[0].Ty.Kind).To(Equal(flatbin.Kind_Array))
		Expect(ty.Fields[0].Ty.Inner.Kind).To(Equal(flatbin.Kind_String))
	})

	DescribeTable("Kind.String()",
		func(k flatbin.Kind, want string) {
			Expect(k.String()).To(Equal(want))
		},
		Entry("Bool", flatbin.Kind_Bool, "Bool"),
		Entry("U64", flatbin.Kind_U64, "U64"),
		Entry("I64", flatbin.Kind_I64, "I64"),
		Entry("F64", flatbin.Kind_F64, "F64"),
		Entry("Bytes", flatbin.Kind_Bytes, "Bytes"),
		Entry("String", flatbin.Kind_String, "String"),
		Entry("Void", flatbin.Kind_Void, "Void"),
		Entry("Array", flatbin.Kind_Array, "Array"),
		Entry("Struct", flatbin.Kind_Struct, "Struct"),
	)
})
