package services

import (
	"strconv"

	"airbnb-dashboard/models"
)

// UnknownRoomType is the decoded label for room-type codes outside the table.
const UnknownRoomType = "Unknown"

var roomTypeLabels = map[string]string{
	"1": "Private Room",
	"2": "Entire Home/Apt",
	"3": "Shared Room",
	"4": "Hotel Room",
}

var cityCoordinates = map[string]models.Coordinates{
	"Toronto":   {Lat: 43.6532, Lon: -79.3832},
	"NewYork":   {Lat: 40.7128, Lon: -74.0060},
	"Amsterdam": {Lat: 52.3676, Lon: 4.9041},
	"Berlin":    {Lat: 52.5200, Lon: 13.4050},
	"Dublin":    {Lat: 53.3498, Lon: -6.2603},
	"Hongkong":  {Lat: 22.3193, Lon: 114.1694},
	"Munich":    {Lat: 48.1351, Lon: 11.5820},
	"Singapore": {Lat: 1.3521, Lon: 103.8198},
	"Sydney":    {Lat: -33.8688, Lon: 151.2093},
	"Tokyo":     {Lat: 35.6762, Lon: 139.6503},
}

var cityAreas = map[string]string{
	"Toronto":   "North America",
	"NewYork":   "North America",
	"Amsterdam": "Europe",
	"Berlin":    "Europe",
	"Dublin":    "Europe",
	"Munich":    "Europe",
	"Hongkong":  "Asia",
	"Singapore": "Asia",
	"Tokyo":     "Asia",
	"Sydney":    "Oceania",
}

var areaColors = map[string]string{
	"North America": "#06b6d4",
	"Europe":        "#f97316",
	"Asia":          "#a855f7",
	"Oceania":       "#fbbf24",
}

// DecodeRoomType maps a room-type code to its label. Codes may arrive as
// "2" or "2.0"; anything unmapped decodes to UnknownRoomType.
func DecodeRoomType(code string) string {
	if label, ok := roomTypeLabels[code]; ok {
		return label
	}
	if f := ToNumeric(code); f.Valid && f.Float64 == float64(int64(f.Float64)) {
		if label, ok := roomTypeLabels[strconv.FormatInt(int64(f.Float64), 10)]; ok {
			return label
		}
	}
	return UnknownRoomType
}

// CityCoordinates returns the coordinates of a known city.
func CityCoordinates(city string) (models.Coordinates, bool) {
	c, ok := cityCoordinates[city]
	return c, ok
}

// CorrectedArea returns the area a city belongs to, if the city is mapped.
func CorrectedArea(city string) (string, bool) {
	a, ok := cityAreas[city]
	return a, ok
}

// AreaColor returns the display colour of an area.
func AreaColor(area string) (string, bool) {
	c, ok := areaColors[area]
	return c, ok
}

// RoomTypeLabels, CityAreas, AreaColors and AllCityCoordinates return copies
// of the lookup tables; callers may modify them freely.
func RoomTypeLabels() map[string]string { return copyMap(roomTypeLabels) }

func CityAreas() map[string]string { return copyMap(cityAreas) }

func AreaColors() map[string]string { return copyMap(areaColors) }

func AllCityCoordinates() map[string]models.Coordinates { return copyMap(cityCoordinates) }

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
