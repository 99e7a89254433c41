package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a bilingual catalog entry. The *_english and *_urdu fields
// are stored exactly as entered. Price is the numeric amount derived from
// PriceEnglish and is what order arithmetic uses.
type Product struct {
	ID              string    `json:"_id"`
	Code            string    `json:"productCode"`
	TitleEnglish    string    `json:"title_english"`
	DescEnglish     string    `json:"desc_english"`
	CategoryEnglish string    `json:"category_english"`
	PriceEnglish    string    `json:"price_english"`
	UnitEnglish     string    `json:"unit_english"`
	TitleUrdu       string    `json:"title_urdu"`
	DescUrdu        string    `json:"desc_urdu"`
	CategoryUrdu    string    `json:"category_urdu"`
	PriceUrdu       string    `json:"price_urdu"`
	UnitUrdu        string    `json:"unit_urdu"`
	ImageLink       string    `json:"image_link"`
	Price           Price     `json:"price"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Price is either a fixed amount or "on request". The zero value is on request.
type Price struct {
	Amount decimal.Decimal
	Fixed  bool
}

// FixedPrice returns a Price with a known amount.
func FixedPrice(d decimal.Decimal) Price { return Price{Amount: d, Fixed: true} }

// MarshalJSON encodes a fixed price as a JSON number and an on-request price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Fixed {
		return []byte("null"), nil
	}
	return []byte(p.Amount.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*p = Price{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*p = FixedPrice(d)
	return nil
}

// String renders a fixed price with two decimals and "on request" otherwise.
func (p Price) String() string {
	if !p.Fixed {
		return "on request"
	}
	return p.Amount.StringFixed(2)
}

var priceNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice extracts the first number in a display price such as
// "Rs. 1,250/kg". Text without any digits yields an on-request price.
func ParsePrice(text string) Price {
	m := priceNumber.FindString(text)
	if m == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return Price{}
	}
	return FixedPrice(d)
}
