package domain

// Item is a catalog offer. UID is assigned by the document store when
// the offer is created and stays stable afterwards.
type Item struct {
	UID      string  `json:"uid"`
	Name     string  `json:"itemName"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ItemFromDocument maps a raw item document onto an Item. Missing or
// mistyped fields fall back to zero values, matching how the store
// returns partially filled documents.
func ItemFromDocument(id string, doc map[string]any) Item {
	return Item{
		UID:      id,
		Name:     asString(doc["itemName"]),
		Price:    asFloat(doc["price"]),
		Quantity: asInt(doc["quantity"]),
	}
}

// Document converts the item into the persisted field map. The UID is
// not part of the document, it is the document key.
func (i Item) Document() map[string]any {
	return map[string]any{
		"itemName": i.Name,
		"price":    i.Price,
		"quantity": i.Quantity,
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
