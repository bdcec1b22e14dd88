package domain

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"
)

type Amenity uint8

const (
	AmenityWiFi Amenity = iota
	AmenityPool
	AmenityGym
	AmenitySpa
	AmenityParking
	AmenityRestaurant
	AmenityBar
	AmenityRoomService
	AmenityAirConditioning
	AmenityBreakfast
	AmenityPetFriendly
	AmenityAirportShuttle
	amenityCount
)

var amenityNames = [amenityCount]string{
	AmenityWiFi:            "wifi",
	AmenityPool:            "pool",
	AmenityGym:             "gym",
	AmenitySpa:             "spa",
	AmenityParking:         "parking",
	AmenityRestaurant:      "restaurant",
	AmenityBar:             "bar",
	AmenityRoomService:     "room_service",
	AmenityAirConditioning: "air_conditioning",
	AmenityBreakfast:       "breakfast",
	AmenityPetFriendly:     "pet_friendly",
	AmenityAirportShuttle:  "airport_shuttle",
}

func (a Amenity) String() string {
	if a >= amenityCount {
		return "unknown"
	}
	return amenityNames[a]
}

func ParseAmenity(name string) (Amenity, error) {
	for i, n := range amenityNames {
		if n == name {
			return Amenity(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAmenity, name)
}

// AmenitySet is a fixed-schema set of amenity flags.
type AmenitySet uint32

func NewAmenitySet(amenities ...Amenity) AmenitySet {
	var s AmenitySet
	for _, a := range amenities {
		s = s.With(a)
	}
	return s
}

// ParseAmenitySet rejects any name outside the known amenity list.
func ParseAmenitySet(names []string) (AmenitySet, error) {
	var s AmenitySet
	for _, name := range names {
		a, err := ParseAmenity(name)
		if err != nil {
			return 0, err
		}
		s = s.With(a)
	}
	return s, nil
}

func (s AmenitySet) With(a Amenity) AmenitySet {
	return s | 1<<a
}

func (s AmenitySet) Has(a Amenity) bool {
	return s&(1<<a) != 0
}

// HasAll reports whether every amenity in required is present in s.
func (s AmenitySet) HasAll(required AmenitySet) bool {
	return s&required == required
}

func (s AmenitySet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s AmenitySet) Names() []string {
	names := make([]string, 0, s.Len())
	for a := Amenity(0); a < amenityCount; a++ {
		if s.Has(a) {
			names = append(names, a.String())
		}
	}
	sort.Strings(names)
	return names
}

func (s AmenitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *AmenitySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	parsed, err := ParseAmenitySet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
