package jagged

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var (
	jsonCompact = jsoniter.Config{}.Froze()
	jsonPretty  = jsoniter.Config{IndentionStep: 4}.Froze()
)

const (
	jsonArray  = jsoniter.ArrayValue
	jsonObject = jsoniter.ObjectValue
)

func jsonConfig(pretty bool) jsoniter.API {
	if pretty {
		return jsonPretty
	}
	return jsonCompact
}

// jsonNode is a parsed JSON value that remembers object key order, which
// RecordArray "contents" objects depend on.
type jsonNode struct {
	kind   jsoniter.ValueType
	str    string
	num    string
	b      bool
	items  []*jsonNode
	keys   []string
	fields []*jsonNode
}

func parseJSON(data []byte) (*jsonNode, error) {
	iter := jsoniter.ParseBytes(jsonCompact, data)
	n := readJSONNode(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, errors.Wrap(iter.Error, "parsing JSON")
	}
	return n, nil
}

func readJSONNode(iter *jsoniter.Iterator) *jsonNode {
	n := &jsonNode{kind: iter.WhatIsNext()}
	switch n.kind {
	case jsoniter.StringValue:
		n.str = iter.ReadString()
	case jsoniter.NumberValue:
		n.num = string(iter.ReadNumber())
	case jsoniter.BoolValue:
		n.b = iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
	case jsoniter.ArrayValue:
		for iter.ReadArray() {
			n.items = append(n.items, readJSONNode(iter))
		}
	case jsoniter.ObjectValue:
		for key := iter.ReadObject(); key != ""; key = iter.ReadObject() {
			n.keys = append(n.keys, key)
			n.fields = append(n.fields, readJSONNode(iter))
		}
	default:
		iter.ReportError("readJSONNode", "unexpected JSON value")
	}
	return n
}

func (n *jsonNode) get(key string) (*jsonNode, bool) {
	if n == nil || n.kind != jsoniter.ObjectValue {
		return nil, false
	}
	for i, k := range n.keys {
		if k == key {
			return n.fields[i], true
		}
	}
	return nil, false
}

func (n *jsonNode) isString() bool { return n != nil && n.kind == jsoniter.StringValue }
func (n *jsonNode) isBool() bool   { return n != nil && n.kind == jsoniter.BoolValue }
func (n *jsonNode) isNull() bool   { return n != nil && n.kind == jsoniter.NilValue }

func (n *jsonNode) isInt() bool {
	if n == nil || n.kind != jsoniter.NumberValue {
		return false
	}
	_, err := jsoniter.Number(n.num).Int64()
	return err == nil
}

func (n *jsonNode) int64() int64 {
	v, _ := jsoniter.Number(n.num).Int64()
	return v
}

func (n *jsonNode) write(s *jsoniter.Stream) {
	switch n.kind {
	case jsoniter.StringValue:
		s.WriteString(n.str)
	case jsoniter.NumberValue:
		s.WriteRaw(n.num)
	case jsoniter.BoolValue:
		s.WriteBool(n.b)
	case jsoniter.NilValue:
		s.WriteNil()
	case jsoniter.ArrayValue:
		if len(n.items) == 0 {
			s.WriteEmptyArray()
			return
		}
		s.WriteArrayStart()
		for i, item := range n.items {
			if i > 0 {
				s.WriteMore()
			}
			item.write(s)
		}
		s.WriteArrayEnd()
	case jsoniter.ObjectValue:
		if len(n.keys) == 0 {
			s.WriteEmptyObject()
			return
		}
		s.WriteObjectStart()
		for i, k := range n.keys {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(k)
			n.fields[i].write(s)
		}
		s.WriteObjectEnd()
	}
}

// compact re-encodes the value without insignificant whitespace.
func (n *jsonNode) compact() string {
	s := jsonCompact.BorrowStream(nil)
	defer jsonCompact.ReturnStream(s)
	n.write(s)
	return string(s.Buffer())
}

func (n *jsonNode) pretty() string {
	s := jsonPretty.BorrowStream(nil)
	defer jsonPretty.ReturnStream(s)
	n.write(s)
	return string(s.Buffer())
}
