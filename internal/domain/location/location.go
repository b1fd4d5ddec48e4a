package location

import (
	"errors"
	"strings"
	"time"
)

// Kind distinguishes curated company locations from ad-hoc ones created
// out of raw coordinates on a booking request.
type Kind string

const (
	KindFixed  Kind = "FIXED"
	KindCustom Kind = "CUSTOM"
)

// Valid reports whether kind is one of the allowed constants.
func (kind Kind) Valid() bool {
	return kind == KindFixed || kind == KindCustom
}

type Location struct {
	ID        string
	Kind      Kind
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

var (
	ErrNameRequired        = errors.New("location name is required")
	ErrInvalidKind         = errors.New("invalid location kind")
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// New validates and builds a location. Two custom locations with identical
// coordinates must resolve to the same row; that dedup happens at the
// resolver, not here.
func New(id string, kind Kind, name, address string, lat, lng float64) (*Location, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, ErrNameRequired
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	return &Location{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Address:   strings.TrimSpace(address),
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ValidateCoordinates bounds-checks a latitude/longitude pair.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return ErrLatitudeOutOfRange
	}
	if lng < -180 || lng > 180 {
		return ErrLongitudeOutOfRange
	}
	return nil
}
