package types

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawParams_UnmarshalJSON(t *testing.T) {
	var p RawParams
	err := json.Unmarshal([]byte(`{
		"category": "auto",
		"price_max": 15000,
		"electric": true,
		"options": ["ABS", "Navigation", 4, null, {"x": 1}],
		"seller_id": null
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, []string{"auto"}, p["category"])
	assert.Equal(t, []string{"15000"}, p["price_max"])
	assert.Equal(t, []string{"true"}, p["electric"])
	assert.Equal(t, []string{"ABS", "Navigation", "4"}, p["options"])
	assert.NotContains(t, p, "seller_id")
}

func TestRawParams_UnmarshalJSON_Rejects(t *testing.T) {
	var p RawParams
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &p))
	assert.Error(t, p.UnmarshalJSON([]byte(`{"a":`)))

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
}

func TestFromValues(t *testing.T) {
	v, err := url.ParseQuery("options[]=A&options=B&category=auto&category=moto")
	require.NoError(t, err)

	p := FromValues(v)
	assert.ElementsMatch(t, []string{"A", "B"}, p["options"])
	first, ok := p.First("category")
	assert.True(t, ok)
	assert.Equal(t, "auto", first)

	_, ok = p.First("missing")
	assert.False(t, ok)
}

func TestIntRange(t *testing.T) {
	lo, hi := int64(10), int64(20)

	assert.True(t, IntRange{}.IsZero())
	assert.True(t, IntRange{}.Contains(-5))
	assert.True(t, IntRange{Min: &lo, Max: &hi}.Contains(10))
	assert.True(t, IntRange{Min: &lo, Max: &hi}.Contains(20))
	assert.False(t, IntRange{Min: &lo}.Contains(9))
	assert.False(t, IntRange{Max: &hi}.Contains(21))
}

func TestParseEnums(t *testing.T) {
	m, ok := ParseMode("rent")
	assert.True(t, ok)
	assert.Equal(t, ModeRent, m)

	s, ok := ParseSortKey("PRICE_DESC")
	assert.True(t, ok)
	assert.Equal(t, SortPriceDesc, s)

	_, ok = ParseCategory("spaceship")
	assert.False(t, ok)

	_, ok = ParseSortKey("")
	assert.False(t, ok)
}

func TestSearchCriteria_Params(t *testing.T) {
	yes := true
	min := int64(1000)
	c := SearchCriteria{
		Category:    CategoryAuto,
		Options:     []string{"ABS"},
		Price:       IntRange{Min: &min},
		ServiceBook: &yes,
		Mode:        ModeAll,
		Page:        2,
		PageSize:    12,
	}

	p := c.Params()
	assert.Equal(t, RawParams{
		"category":     {"auto"},
		"options":      {"ABS"},
		"price_min":    {"1000"},
		"service_book": {"true"},
		"mode":         {"ALL"},
		"page":         {"2"},
		"page_size":    {"12"},
	}, p)

	// the encoded params are a copy
	p["options"][0] = "changed"
	assert.Equal(t, "ABS", c.Options[0])
}
