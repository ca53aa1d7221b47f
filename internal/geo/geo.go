package geo

import "fmt"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FormatAddress renders coordinates as a display address, 4 decimal
// places each. There is no reverse-geocoding provider; the coordinate
// string is the address.
func FormatAddress(c Coordinates) string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}
