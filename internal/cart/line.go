package cart

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Option is a variant attribute that may be absent. Absent options encode
// as JSON null.
type Option struct {
	Value string
	Valid bool
}

// Some returns a present option.
func Some(v string) Option { return Option{Value: v, Valid: true} }

// None returns an absent option.
func None() Option { return Option{} }

// OptionFrom treats blank form input as absent.
func OptionFrom(raw string) Option {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None()
	}
	return Some(raw)
}

// String returns the value, or "" when absent.
func (o Option) String() string {
	if !o.Valid {
		return ""
	}
	return o.Value
}

func (o Option) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Option) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Key is the identity of a cart line: the same product with the same size
// and color always shares one line.
type Key struct {
	ProductID string
	Size      Option
	Color     Option
}

// NewKey builds a key from raw form values.
func NewKey(productID, size, color string) Key {
	return Key{ProductID: strings.TrimSpace(productID), Size: OptionFrom(size), Color: OptionFrom(color)}
}

// Line is the persisted form of one cart line.
type Line struct {
	ProductID string `json:"productId"`
	Size      Option `json:"size"`
	Color     Option `json:"color"`
	Quantity  int    `json:"quantity"`
}

// Key returns the line identity.
func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Document is the persisted cart.
type Document struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d Document) index(k Key) int {
	for i, l := range d.Lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (d Document) clone() Document {
	d.Lines = append([]Line(nil), d.Lines...)
	return d
}
