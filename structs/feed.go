package structs

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number or numeric string. Anything else (null,
// malformed string, object) coerces to 0 instead of failing the record.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat(coerceFloat(data))
	return nil
}

// FlexInt is FlexFloat truncated to an integer.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	*i = FlexInt(coerceFloat(data))
	return nil
}

// FlexString decodes a JSON string, number or bool as its string form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(data)
	return nil
}

func coerceFloat(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return 0
	}
	raw := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return 0
		}
		raw = strings.TrimSpace(str)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

// ProductRecord is a single normalized entry from the supplier feed.
// Immutable once parsed; numeric coercion rules live in the Flex types.
type ProductRecord struct {
	SKU              string                `json:"sku"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"shortdesc"`
	RRPInclTax       FlexFloat             `json:"rrp_incl"`
	CostPrice        FlexFloat             `json:"price"`
	PromoPrice       FlexFloat             `json:"promo_price"`
	StockCPT         FlexInt               `json:"cptstock"`
	StockJHB         FlexInt               `json:"jhbstock"`
	StockDBN         FlexInt               `json:"dbnstock"`
	Weight           *FlexFloat            `json:"weight"`
	Length           *FlexFloat            `json:"length"`
	Width            *FlexFloat            `json:"width"`
	Height           *FlexFloat            `json:"height"`
	CategoryTree     string                `json:"categorytree"`
	Attributes       map[string]FlexString `json:"attributes"`
	FeaturedImage    string                `json:"featured_image"`
	AllImages        string                `json:"all_images"`
}

// TotalStock sums the three branch counts.
func (r *ProductRecord) TotalStock() int {
	return int(r.StockCPT) + int(r.StockJHB) + int(r.StockDBN)
}

// GalleryURLs splits the pipe-delimited all_images field into trimmed URLs.
func (r *ProductRecord) GalleryURLs() []string {
	if strings.TrimSpace(r.AllImages) == "" {
		return nil
	}
	parts := strings.Split(r.AllImages, "|")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
