package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// CardPrices carries the raw multi-currency quotes of the external catalog.
// The catalog serves them as decimal strings; an empty string means the
// catalog has no quote for that variant.
type CardPrices struct {
	USD     string `json:"usd,omitempty" bson:"usd,omitempty"`
	USDFoil string `json:"usd_foil,omitempty" bson:"usd_foil,omitempty"`
	EUR     string `json:"eur,omitempty" bson:"eur,omitempty"`
}

// Card is a snapshot of one catalog entry. The catalog owns and mutates it;
// this service only reads it, optionally overlaid with a local Gestion record.
type Card struct {
	ID              string     `json:"id" bson:"id"`
	Name            string     `json:"name" bson:"name"`
	SetName         string     `json:"set_name,omitempty" bson:"set_name,omitempty"`
	CollectorNumber string     `json:"collector_number,omitempty" bson:"collector_number,omitempty"`
	Rarity          string     `json:"rarity,omitempty" bson:"rarity,omitempty"`
	ImageURL        string     `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Prices          CardPrices `json:"prices" bson:"prices"`
	Gestion         *Gestion   `json:"gestion,omitempty" bson:"gestion,omitempty"`
}

// Valid reports whether the snapshot carries the minimum identity fields.
func (c *Card) Valid() bool {
	return c.ID != "" && c.Name != ""
}

// Gestion is the admin-maintained overlay for one card: local stock,
// sale flag and optional price override / last-known catalog price.
type Gestion struct {
	CardID               string    `json:"card_id" bson:"_id"`
	StockLevel           int       `json:"stock_level" bson:"stock_level"`
	ActiveForSale        bool      `json:"active_for_sale" bson:"active_for_sale"`
	CustomPrice          FlexPrice `json:"custom_price" bson:"custom_price"`
	CatalogPriceSnapshot FlexPrice `json:"catalog_price_snapshot" bson:"catalog_price_snapshot"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}

// FlexPrice is a price value that may arrive as a JSON number, a numeric
// string, or null. Absent, null and unparsable values are all equivalent:
// the zero FlexPrice is "no price". It never rejects input, so decoding a
// Gestion payload cannot fail on a malformed price field.
type FlexPrice struct {
	value float64
	valid bool
}

// NewFlexPrice wraps a known-good price value.
func NewFlexPrice(v float64) FlexPrice {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FlexPrice{}
	}
	return FlexPrice{value: v, valid: true}
}

// ParseFlexPrice parses a decimal string into a FlexPrice.
func ParseFlexPrice(s string) FlexPrice {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexPrice{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FlexPrice{}
	}
	return NewFlexPrice(v)
}

// Float64 returns the numeric value and whether one is present.
func (p FlexPrice) Float64() (float64, bool) {
	return p.value, p.valid
}

func (p FlexPrice) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(p.value, 'f', -1, 64)), nil
}

func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = FlexPrice{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = FlexPrice{}
			return nil
		}
		*p = ParseFlexPrice(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*p = FlexPrice{}
		return nil
	}
	*p = NewFlexPrice(v)
	return nil
}

func (p FlexPrice) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !p.valid {
		return bsontype.Null, nil, nil
	}
	return bsontype.Double, bsoncore.AppendDouble(nil, p.value), nil
}

func (p *FlexPrice) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Double:
		if v, ok := raw.DoubleOK(); ok {
			*p = NewFlexPrice(v)
			return nil
		}
	case bsontype.Int32:
		if v, ok := raw.Int32OK(); ok {
			*p = NewFlexPrice(float64(v))
			return nil
		}
	case bsontype.Int64:
		if v, ok := raw.Int64OK(); ok {
			*p = NewFlexPrice(float64(v))
			return nil
		}
	case bsontype.String:
		if s, ok := raw.StringValueOK(); ok {
			*p = ParseFlexPrice(s)
			return nil
		}
	case bsontype.Null, bsontype.Undefined:
		*p = FlexPrice{}
		return nil
	}
	*p = FlexPrice{}
	return nil
}

func (p FlexPrice) String() string {
	if !p.valid {
		return "<none>"
	}
	return fmt.Sprintf("%g", p.value)
}
