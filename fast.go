// Copyright (c) 2024 Neomantra Corp

package flatbin

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fastjson/fastfloat"
)

// FastDeserialize builds a new flatbin document by streaming jsonBytes
// straight into a Builder through a JSON tokenizer, without ever
// materializing an intermediate JSON tree. It is "fast" relative to
// SlowDeserialize for exactly that reason.
func FastDeserialize(ty *Ty, jsonBytes []byte) (*FlatbinBuf, error) {
	buf := NewFlatbinBuf()
	if err := FastDeserializeInto(ty, jsonBytes, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// FastDeserializeInto is FastDeserialize, writing into an existing buffer
// instead of allocating a new one.
func FastDeserializeInto(ty *Ty, jsonBytes []byte, buf *FlatbinBuf) error {
	return FastDeserializeReader(ty, bytes.NewReader(jsonBytes), buf)
}

// FastDeserializeReader is FastDeserialize reading straight off r, so a
// caller streaming a document off a socket or file never has to buffer the
// whole JSON payload in memory first.
func FastDeserializeReader(ty *Ty, r io.Reader, buf *FlatbinBuf) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return fastDeserializeValue(dec, ty, NewBuilder(buf))
}

func fastDeserializeValue(dec *json.Decoder, ty *Ty, b Builder) error {
	tok, err := dec.Token()
	if err != nil {
		return wrapTokenErr(err)
	}

	switch ty.Kind {
	case Kind_Bool:
		v, ok := tok.(bool)
		if !ok {
			return unexpectedTypeError("a boolean", tokenKind(tok))
		}
		b.WriteBool(v)

	case Kind_U64:
		n, ok := tok.(json.Number)
		if !ok {
			return unexpectedTypeError("a non-negative integer", tokenKind(tok))
		}
		v, err := fastfloat.ParseUint64(string(n))
		if err != nil {
			return unexpectedTypeError("a non-negative integer", tokenKind(tok))
		}
		b.WriteU64(v)

	case Kind_I64:
		n, ok := tok.(json.Number)
		if !ok {
			return unexpectedTypeError("an integer", tokenKind(tok))
		}
		v, err := fastfloat.ParseInt64(string(n))
		if err != nil {
			return unexpectedTypeError("an integer", tokenKind(tok))
		}
		b.WriteI64(v)

	case Kind_F64:
		n, ok := tok.(json.Number)
		if !ok {
			return unexpectedTypeError("a number", tokenKind(tok))
		}
		v, err := n.Float64()
		if err != nil {
			return unexpectedTypeError("a number", tokenKind(tok))
		}
		b.WriteF64(v)

	case Kind_Bytes:
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return unexpectedTypeError("a byte array", tokenKind(tok))
		}
		var elements []byte
		for dec.More() {
			elemTok, err := dec.Token()
			if err != nil {
				return wrapTokenErr(err)
			}
			n, ok := elemTok.(json.Number)
			if !ok {
				return ErrNotAByte
			}
			v, err := fastfloat.ParseUint64(string(n))
			if err != nil || v > 255 {
				return ErrNotAByte
			}
			elements = append(elements, byte(v))
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return wrapTokenErr(err)
		}
		b.WriteBytes(elements)

	case Kind_String:
		v, ok := tok.(string)
		if !ok {
			return unexpectedTypeError("a string", tokenKind(tok))
		}
		b.WriteStr(v)

	case Kind_Void:
		if tok != nil {
			return unexpectedTypeError(jsonKindNull, tokenKind(tok))
		}
		b.WriteVoid()

	case Kind_Array:
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return unexpectedTypeError("an array", tokenKind(tok))
		}
		vector := b.StartVector()
		for dec.More() {
			if err := fastDeserializeValue(dec, ty.Inner, vector.AsBuilder()); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return wrapTokenErr(err)
		}
		vector.End()

	case Kind_Struct:
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return unexpectedTypeError("an object", tokenKind(tok))
		}
		staged, seen, err := fastDeserializeStructFields(dec, ty.Fields)
		if err != nil {
			return err
		}
		tuple := b.StartTuple()
		for i, field := range ty.Fields {
			if !seen[i] {
				return missingFieldError(field.Name)
			}
			tuple.Copy(FlatbinFromBytes(staged[i]))
		}
		tuple.End()
	}
	return nil
}

// fastDeserializeStructFields consumes an object's key/value pairs in
// whatever order they arrive on the wire, encoding each field's value into
// its own scratch buffer as it is seen. The caller then copies those
// scratch buffers into the tuple in schema field order — the struct's
// positional wire layout must match the schema regardless of the JSON key
// arrival order.
//
// Presence is tracked in seen rather than by checking staged[i] for nil:
// a field's canonical encoding can itself be zero bytes (U64/I64 value 0,
// an empty string, an empty array, Void), and scratch.Bytes() returns nil
// for those, which would otherwise be indistinguishable from "never seen".
func fastDeserializeStructFields(dec *json.Decoder, fields []Field) ([][]byte, []bool, error) {
	staged := make([][]byte, len(fields))
	seen := make([]bool, len(fields))
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, wrapTokenErr(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, unexpectedTypeError("a string", tokenKind(keyTok))
		}
		idx := fieldIndexByName(fields, key)
		if idx < 0 {
			return nil, nil, ErrUnknownField
		}
		if seen[idx] {
			return nil, nil, ErrDuplicateField
		}
		scratch := NewFlatbinBuf()
		if err := fastDeserializeValue(dec, &fields[idx].Ty, NewBuilder(scratch)); err != nil {
			return nil, nil, err
		}
		staged[idx] = scratch.Bytes()
		seen[idx] = true
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, nil, wrapTokenErr(err)
	}
	return staged, seen, nil
}

func fieldIndexByName(fields []Field, name string) int {
	for i := range fields {
		if fields[i].Name == name {
			return i
		}
	}
	return -1
}

// wrapTokenErr turns a raw io.EOF from the middle of a document into the
// package's own unexpected-EOF sentinel.
func wrapTokenErr(err error) error {
	if err == io.EOF {
		return ErrUnexpectedEOF
	}
	return err
}

// tokenKind describes a JSON token's kind for use in UnexpectedTypeError's
// Got field.
func tokenKind(tok json.Token) string {
	switch t := tok.(type) {
	case nil:
		return jsonKindNull
	case bool:
		return jsonKindBool
	case json.Number:
		return jsonKindNumber
	case string:
		return jsonKindString
	case json.Delim:
		switch t {
		case '[':
			return jsonKindArray
		case '{':
			return jsonKindObject
		default:
			return jsonKindNull
		}
	default:
		return jsonKindNull
	}
}

// FastSerialize streams a flatbin document straight to w as JSON, walking
// ty and value together without building an intermediate tree.
func FastSerialize(ty *Ty, value *Flatbin, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := fastSerializeValue(ty, value, bw); err != nil {
		return err
	}
	return bw.Flush()
}

func fastSerializeValue(ty *Ty, f *Flatbin, w *bufio.Writer) error {
	switch ty.Kind {
	case Kind_Bool:
		v, err := f.ReadBool()
		if err != nil {
			return corrupt(err)
		}
		if v {
			_, err = w.WriteString("true")
		} else {
			_, err = w.WriteString("false")
		}
		return err

	case Kind_U64:
		v, err := f.ReadU64()
		if err != nil {
			return corrupt(err)
		}
		_, err = w.WriteString(strconv.FormatUint(v, 10))
		return err

	case Kind_I64:
		v, err := f.ReadI64()
		if err != nil {
			return corrupt(err)
		}
		_, err = w.WriteString(strconv.FormatInt(v, 10))
		return err

	case Kind_F64:
		v, err := f.ReadF64()
		if err != nil {
			return corrupt(err)
		}
		_, err = w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		return err

	case Kind_Bytes:
		elements, err := f.ReadBytes()
		if err != nil {
			return corrupt(err)
		}
		w.WriteByte('[')
		for i, el := range elements {
			if i > 0 {
				w.WriteByte(',')
			}
			w.WriteString(strconv.Itoa(int(el)))
		}
		w.WriteByte(']')
		return nil

	case Kind_String:
		v, err := f.ReadStr()
		if err != nil {
			return corrupt(err)
		}
		return writeJSONString(w, v)

	case Kind_Void:
		if err := f.ReadVoid(); err != nil {
			return corrupt(err)
		}
		_, err := w.WriteString("null")
		return err

	case Kind_Array:
		seq, err := f.ReadArray()
		if err != nil {
			return corrupt(err)
		}
		w.WriteByte('[')
		for i := 0; ; i++ {
			item, ok := seq.Next()
			if !ok {
				break
			}
			if i > 0 {
				w.WriteByte(',')
			}
			if err := fastSerializeValue(ty.Inner, item, w); err != nil {
				return err
			}
		}
		w.WriteByte(']')
		return nil

	case Kind_Struct:
		seq, err := f.ReadTuple(len(ty.Fields))
		if err != nil {
			return corrupt(err)
		}
		w.WriteByte('{')
		for i, field := range ty.Fields {
			item, ok := seq.Next()
			if !ok {
				return corrupt(ErrUnexpectedEOF)
			}
			if i > 0 {
				w.WriteByte(',')
			}
			if err := writeJSONString(w, field.Name); err != nil {
				return err
			}
			w.WriteByte(':')
			if err := fastSerializeValue(&field.Ty, item, w); err != nil {
				return err
			}
		}
		w.WriteByte('}')
		return nil
	}
	return nil
}

// writeJSONString writes s as a properly escaped, quoted JSON string,
// reusing the package's JSON library for escaping rather than hand-rolling
// it.
func writeJSONString(w *bufio.Writer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return corrupt(err)
	}
	_, err = w.Write(quoted)
	return err
}
