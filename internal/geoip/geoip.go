// Package geoip resolves client addresses to coarse geolocation using a
// MaxMind city database.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

type Resolver struct {
	reader *geoip2.Reader
}

// Open loads the MaxMind database at path.
func Open(path string) (*Resolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geolocation database %s: %w", path, err)
	}
	return &Resolver{reader: reader}, nil
}

func (r *Resolver) Close() error {
	return r.reader.Close()
}

// Lookup resolves an address to a country code and coordinates.
// Anything unresolvable comes back as XX at (0, 0) rather than an
// error; logins proceed with unknown location.
func (r *Resolver) Lookup(ip string) model.Geolocation {
	unknown := model.Geolocation{Country: "XX"}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return unknown
	}

	record, err := r.reader.City(parsed)
	if err != nil || record.Country.IsoCode == "" {
		return unknown
	}

	return model.Geolocation{
		Country:   record.Country.IsoCode,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
}
