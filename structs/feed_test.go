package structs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecordNumericCoercion(t *testing.T) {
	raw := `{
		"sku": "SYN-001",
		"rrp_incl": "1999.99",
		"price": 1500,
		"promo_price": "not-a-number",
		"cptstock": 3,
		"jhbstock": "5",
		"dbnstock": "bad",
		"weight": "1.25"
	}`

	var record ProductRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.InDelta(t, 1999.99, float64(record.RRPInclTax), 0.001)
	assert.InDelta(t, 1500, float64(record.CostPrice), 0.001)
	assert.Zero(t, float64(record.PromoPrice))
	assert.Equal(t, 8, record.TotalStock())
	require.NotNil(t, record.Weight)
	assert.InDelta(t, 1.25, float64(*record.Weight), 0.001)
}

func TestProductRecordNullAndMissingFieldsCoerceToZero(t *testing.T) {
	raw := `{"sku": "SYN-002", "rrp_incl": null, "cptstock": null}`

	var record ProductRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Zero(t, float64(record.RRPInclTax))
	assert.Equal(t, 0, record.TotalStock())
	assert.Nil(t, record.Weight, "missing dimension stays absent")
}

func TestFlexStringCoercesScalars(t *testing.T) {
	raw := `{"attributes": {"brand": "Mecer", "warranty": 24, "rating": 4.5}}`

	var record ProductRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Equal(t, FlexString("Mecer"), record.Attributes["brand"])
	assert.Equal(t, FlexString("24"), record.Attributes["warranty"])
	assert.Equal(t, FlexString("4.5"), record.Attributes["rating"])
}

func TestGalleryURLs(t *testing.T) {
	record := ProductRecord{AllImages: "https://cdn.example.com/a.jpg | https://cdn.example.com/b.jpg |  | https://cdn.example.com/c.jpg"}

	urls := record.GalleryURLs()

	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/c.jpg",
	}, urls)
}

func TestGalleryURLsEmpty(t *testing.T) {
	record := ProductRecord{AllImages: "   "}
	assert.Nil(t, record.GalleryURLs())
}
