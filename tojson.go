package jagged

import (
	"io"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ToJSON renders c as JSON: lists for every dimension, objects for records,
// null for missing values and strings for string-like lists. maxdecimals
// caps the digits after the decimal point; negative means full precision.
func ToJSON(c Content, pretty bool, maxdecimals int) (string, error) {
	cfg := jsonConfig(pretty)
	s := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(s)
	if err := writeValue(s, c, maxdecimals); err != nil {
		return "", err
	}
	return string(s.Buffer()), nil
}

// WriteJSON streams the ToJSON rendering of c to w.
func WriteJSON(w io.Writer, c Content, pretty bool, maxdecimals int) error {
	s := jsoniter.NewStream(jsonConfig(pretty), w, 4096)
	if err := writeValue(s, c, maxdecimals); err != nil {
		return err
	}
	return s.Flush()
}

func writeValue(s *jsoniter.Stream, c Content, maxdecimals int) error {
	if c == nil {
		s.WriteNil()
		return nil
	}
	return c.writeJSON(s, maxdecimals)
}

// writeElements writes every element of c as one JSON list.
func writeElements(s *jsoniter.Stream, c Content, maxdecimals int) error {
	n := c.Length()
	if n == 0 {
		s.WriteEmptyArray()
		return nil
	}
	s.WriteArrayStart()
	for i := 0; i < n; i++ {
		if i > 0 {
			s.WriteMore()
		}
		el, err := c.GetItemAtNowrap(i)
		if err != nil {
			return err
		}
		if err := writeValue(s, el, maxdecimals); err != nil {
			return err
		}
	}
	s.WriteArrayEnd()
	return nil
}

// writeList writes a list-type node, turning string-like lists into JSON
// strings.
func writeList(s *jsoniter.Stream, c Content, maxdecimals int) error {
	if !isStringLike(c.Parameters()) {
		return writeElements(s, c, maxdecimals)
	}
	n := c.Length()
	if n == 0 {
		s.WriteEmptyArray()
		return nil
	}
	s.WriteArrayStart()
	for i := 0; i < n; i++ {
		if i > 0 {
			s.WriteMore()
		}
		el, err := c.GetItemAtNowrap(i)
		if err != nil {
			return err
		}
		leaf, ok := el.(*NumpyArray)
		if !ok || leaf.itemsize != 1 {
			return unhandledErr(c.ClassName(), "string-like list must hold a NumpyArray of bytes, not %s", el.ClassName())
		}
		s.WriteString(string(leaf.Bytes()))
	}
	s.WriteArrayEnd()
	return nil
}

func writeFloat(s *jsoniter.Stream, v float64, maxdecimals int) {
	switch {
	case math.IsNaN(v):
		s.WriteRaw("NaN")
		return
	case math.IsInf(v, 1):
		s.WriteRaw("Infinity")
		return
	case math.IsInf(v, -1):
		s.WriteRaw("-Infinity")
		return
	}
	var text string
	if maxdecimals >= 0 {
		text = strconv.FormatFloat(v, 'f', maxdecimals, 64)
		if strings.Contains(text, ".") {
			text = strings.TrimRight(text, "0")
		}
		text = strings.TrimSuffix(text, ".")
	} else {
		text = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	s.WriteRaw(text)
}
