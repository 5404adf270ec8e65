// Package stores lists the physical shop locations shown on the map.
package stores

import "strings"

// Location is one pin: the headquarters or a retail store.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	HQ        bool    `json:"hq"`
}

// locations is static data; there is no admin flow for editing it.
var locations = []Location{
	{Name: "Trekking Gurus.zoo headquarters", Latitude: 51.1079, Longitude: 17.0595, HQ: true},
	{Name: "Store 1", Latitude: 51.1085, Longitude: 17.0605},
	{Name: "Store 2", Latitude: 51.1090, Longitude: 17.0610},
	{Name: "Store 3", Latitude: 51.1070, Longitude: 17.0620},
	{Name: "Store 4", Latitude: 51.1065, Longitude: 17.0580},
}

// All returns every location, headquarters first.
func All() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// Find returns the location with the given name, case-insensitively.
func Find(name string) (Location, bool) {
	for _, l := range locations {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Location{}, false
}
