package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("booking is not valid JSON")
	ErrNotObject   = errors.New("booking must be a JSON object")
)

// Field is a single named value of a booking. Value holds a string,
// float64, bool, nil or json.RawMessage for nested objects and arrays.
type Field struct {
	Key   string
	Value any
}

// Booking is a schemaless record that remembers the order in which its
// fields were first set. The zero value is an empty booking.
type Booking struct {
	fields []Field
	index  map[string]int
}

func NewBooking(fields ...Field) *Booking {
	b := &Booking{}
	for _, f := range fields {
		b.Set(f.Key, f.Value)
	}
	return b
}

// Set assigns value to key. A new key is appended; an existing key keeps its
// position and takes the new value.
func (b *Booking) Set(key string, value any) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = value
		return
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Value: value})
}

func (b *Booking) Get(key string) (any, bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.fields[i].Value, true
}

func (b *Booking) Len() int {
	return len(b.fields)
}

func (b *Booking) Keys() []string {
	keys := make([]string, len(b.fields))
	for i, f := range b.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the booking's fields in order.
func (b *Booking) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
func (b *Booking) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return ErrNotObject
	}

	*b = Booking{}
	result.ForEach(func(key, value gjson.Result) bool {
		b.Set(key.String(), fromResult(value))
		return true
	})
	return nil
}

func fromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return r.Bool()
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	default:
		return json.RawMessage(r.Raw)
	}
}

func (b Booking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range b.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

const StatusSaved = "saved"
