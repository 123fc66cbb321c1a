package fortnox

import (
	"strconv"
)

// Price is a monetary amount as delivered by the API. Fortnox serializes
// prices inconsistently (JSON string, number, or null), so the raw value is
// kept verbatim and parsed on demand.
type Price string

// UnmarshalJSON accepts a JSON string, number, or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
	default:
		*p = Price(data)
	}
	return nil
}

// Value parses the amount as a decimal. ok is false when the raw value is
// missing or not numeric; callers substitute their own default.
func (p Price) Value() (float64, bool) {
	if p == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Article is an inventory item in the Fortnox article register.
type Article struct {
	ArticleNumber   string  `json:"ArticleNumber"`
	Description     string  `json:"Description"`
	QuantityInStock float64 `json:"QuantityInStock"`
	Unit            string  `json:"Unit"`
	StockPlace      string  `json:"StockPlace"`
	SalesPrice      Price   `json:"SalesPrice"`
	PurchasePrice   Price   `json:"PurchasePrice"`
	Currency        string  `json:"Currency"`
	SupplierName    string  `json:"SupplierName"`
	EAN             string  `json:"EAN"`
	Manufacturer    string  `json:"Manufacturer"`
}
