// README: Identifier and geographic value objects shared by modules.
package types

import "strconv"

type ID string

// Point is a latitude/longitude pair. The zero value (0,0) means "unset".
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// IsSet reports whether p carries a real location.
func (p Point) IsSet() bool {
	return p.Lat != 0 || p.Lng != 0
}

// String renders p as "lat,lng", the form the directions API takes for origin and destination.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
