package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAge_BeforeAndAfterBirthday(t *testing.T) {
	u := UserProfile{DateOfBirth: "2000-6-15"}

	dayBefore := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 23, u.Age(dayBefore))

	birthday := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 24, u.Age(birthday))

	later := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 24, u.Age(later))
}

func TestAge_MalformedDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, UserProfile{}.Age(now))
	assert.Equal(t, 0, UserProfile{DateOfBirth: "2000/6/15"}.Age(now))
	assert.Equal(t, 0, UserProfile{DateOfBirth: "2000-x-15"}.Age(now))
}

func TestItemDocumentRoundTrip(t *testing.T) {
	item := Item{UID: "abc", Name: "compass", Price: 12.5, Quantity: 3}

	doc := item.Document()
	assert.Equal(t, "compass", doc["itemName"])

	back := ItemFromDocument("abc", doc)
	assert.Equal(t, item, back)
}

func TestItemFromDocument_MixedNumericTypes(t *testing.T) {
	// Document stores hand numbers back as int64 more often than not.
	item := ItemFromDocument("id1", map[string]any{
		"itemName": "water bottle",
		"price":    int64(8),
		"quantity": float64(4),
	})

	assert.Equal(t, 8.0, item.Price)
	assert.Equal(t, 4, item.Quantity)
}
