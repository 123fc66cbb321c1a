package fortnox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Price
	}{
		{name: "string", json: `{"SalesPrice":"19.99"}`, want: Price("19.99")},
		{name: "number", json: `{"SalesPrice":19.99}`, want: Price("19.99")},
		{name: "integer", json: `{"SalesPrice":120}`, want: Price("120")},
		{name: "null", json: `{"SalesPrice":null}`, want: Price("")},
		{name: "absent", json: `{}`, want: Price("")},
		{name: "garbage string", json: `{"SalesPrice":"abc"}`, want: Price("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Article
			require.NoError(t, json.Unmarshal([]byte(tt.json), &a))
			assert.Equal(t, tt.want, a.SalesPrice)
		})
	}
}

func TestPriceValue(t *testing.T) {
	tests := []struct {
		name   string
		price  Price
		want   float64
		wantOK bool
	}{
		{name: "decimal string", price: Price("19.99"), want: 19.99, wantOK: true},
		{name: "integer string", price: Price("120"), want: 120, wantOK: true},
		{name: "missing", price: Price(""), want: 0, wantOK: false},
		{name: "not numeric", price: Price("abc"), want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.price.Value()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
