// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"strconv"

	"github.com/valyala/fastjson"
)

// SlowDeserialize builds a new flatbin document out of a parsed JSON tree,
// walking ty and tree together. It is "slow" relative to FastDeserialize
// because tree is already a fully materialized fastjson.Value graph rather
// than a byte stream consumed once.
func SlowDeserialize(ty *Ty, tree *fastjson.Value) (*FlatbinBuf, error) {
	buf := NewFlatbinBuf()
	if err := SlowDeserializeInto(ty, tree, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SlowDeserializeInto is SlowDeserialize, writing into an existing buffer
// instead of allocating a new one.
func SlowDeserializeInto(ty *Ty, tree *fastjson.Value, buf *FlatbinBuf) error {
	return slowDeserializeValue(ty, tree, NewBuilder(buf))
}

func slowDeserializeValue(ty *Ty, value *fastjson.Value, b Builder) error {
	switch ty.Kind {
	case Kind_Bool:
		v, err := value.Bool()
		if err != nil {
			return unexpectedTypeError("a boolean", jsonKindOf(value))
		}
		b.WriteBool(v)

	case Kind_U64:
		if value.Type() != fastjson.TypeNumber {
			return unexpectedTypeError("a non-negative integer", jsonKindOf(value))
		}
		v, err := value.Uint64()
		if err != nil {
			return unexpectedTypeError("a non-negative integer", jsonKindOf(value))
		}
		b.WriteU64(v)

	case Kind_I64:
		if value.Type() != fastjson.TypeNumber {
			return unexpectedTypeError("an integer", jsonKindOf(value))
		}
		v, err := value.Int64()
		if err != nil {
			return unexpectedTypeError("an integer", jsonKindOf(value))
		}
		b.WriteI64(v)

	case Kind_F64:
		if value.Type() != fastjson.TypeNumber {
			return unexpectedTypeError("a number", jsonKindOf(value))
		}
		v, err := value.Float64()
		if err != nil {
			return unexpectedTypeError("a number", jsonKindOf(value))
		}
		b.WriteF64(v)

	case Kind_Bytes:
		elements, err := value.Array()
		if err != nil {
			return unexpectedTypeError("a byte array", jsonKindOf(value))
		}
		bytes := make([]byte, len(elements))
		for i, element := range elements {
			n, err := element.Uint64()
			if err != nil || n > 255 {
				return ErrNotAByte
			}
			bytes[i] = byte(n)
		}
		b.WriteBytes(bytes)

	case Kind_String:
		v, err := value.StringBytes()
		if err != nil {
			return unexpectedTypeError("a string", jsonKindOf(value))
		}
		b.WriteStr(string(v))

	case Kind_Void:
		if value.Type() != fastjson.TypeNull {
			return unexpectedTypeError(jsonKindNull, jsonKindOf(value))
		}
		b.WriteVoid()

	case Kind_Array:
		elements, err := value.Array()
		if err != nil {
			return unexpectedTypeError("an array", jsonKindOf(value))
		}
		vector := b.StartVector()
		for _, element := range elements {
			if err := slowDeserializeValue(ty.Inner, element, vector.AsBuilder()); err != nil {
				return err
			}
		}
		vector.End()

	case Kind_Struct:
		object, err := value.Object()
		if err != nil {
			return unexpectedTypeError("an object", jsonKindOf(value))
		}
		tuple := b.StartTuple()
		for _, field := range ty.Fields {
			fieldValue := object.Get(field.Name)
			if fieldValue == nil {
				return missingFieldError(field.Name)
			}
			if err := slowDeserializeValue(&field.Ty, fieldValue, tuple.AsBuilder()); err != nil {
				return err
			}
		}
		tuple.End()
	}
	return nil
}

// jsonKindOf describes value's JSON kind for use in UnexpectedTypeError's
// Got field.
func jsonKindOf(value *fastjson.Value) string {
	switch value.Type() {
	case fastjson.TypeNull:
		return jsonKindNull
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return jsonKindBool
	case fastjson.TypeNumber:
		return jsonKindNumber
	case fastjson.TypeString:
		return jsonKindString
	case fastjson.TypeArray:
		return jsonKindArray
	case fastjson.TypeObject:
		return jsonKindObject
	default:
		return jsonKindNull
	}
}

// SlowSerialize converts a flatbin document back into a JSON tree, walking
// ty and value together. The returned tree is allocated out of arena; arena
// must outlive any use of the result.
func SlowSerialize(ty *Ty, value *Flatbin, arena *fastjson.Arena) (*fastjson.Value, error) {
	return slowSerializeValue(ty, value, arena)
}

func slowSerializeValue(ty *Ty, f *Flatbin, arena *fastjson.Arena) (*fastjson.Value, error) {
	switch ty.Kind {
	case Kind_Bool:
		v, err := f.ReadBool()
		if err != nil {
			return nil, corrupt(err)
		}
		if v {
			return arena.NewTrue(), nil
		}
		return arena.NewFalse(), nil

	case Kind_U64:
		v, err := f.ReadU64()
		if err != nil {
			return nil, corrupt(err)
		}
		return arena.NewNumberString(strconv.FormatUint(v, 10)), nil

	case Kind_I64:
		v, err := f.ReadI64()
		if err != nil {
			return nil, corrupt(err)
		}
		return arena.NewNumberString(strconv.FormatInt(v, 10)), nil

	case Kind_F64:
		v, err := f.ReadF64()
		if err != nil {
			return nil, corrupt(err)
		}
		return arena.NewNumberFloat64(v), nil

	case Kind_Bytes:
		bytes, err := f.ReadBytes()
		if err != nil {
			return nil, corrupt(err)
		}
		arr := arena.NewArray()
		for i, b := range bytes {
			arr.SetArrayItem(i, arena.NewNumberInt(int(b)))
		}
		return arr, nil

	case Kind_String:
		v, err := f.ReadStr()
		if err != nil {
			return nil, corrupt(err)
		}
		return arena.NewString(v), nil

	case Kind_Void:
		if err := f.ReadVoid(); err != nil {
			return nil, corrupt(err)
		}
		return arena.NewNull(), nil

	case Kind_Array:
		seq, err := f.ReadArray()
		if err != nil {
			return nil, corrupt(err)
		}
		arr := arena.NewArray()
		for i := 0; ; i++ {
			item, ok := seq.Next()
			if !ok {
				break
			}
			child, err := slowSerializeValue(ty.Inner, item, arena)
			if err != nil {
				return nil, err
			}
			arr.SetArrayItem(i, child)
		}
		return arr, nil

	case Kind_Struct:
		seq, err := f.ReadTuple(len(ty.Fields))
		if err != nil {
			return nil, corrupt(err)
		}
		obj := arena.NewObject()
		for _, field := range ty.Fields {
			item, ok := seq.Next()
			if !ok {
				return nil, corrupt(ErrUnexpectedEOF)
			}
			child, err := slowSerializeValue(&field.Ty, item, arena)
			if err != nil {
				return nil, err
			}
			obj.Set(field.Name, child)
		}
		return obj, nil
	}
	return nil, nil
}
