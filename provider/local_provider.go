package provider

import (
	"context"
	"net"
	"path/filepath"

	"github.com/oschwald/geoip2-golang"

	"github.com/cloud66-oss/geotrace/utils"
)

// LocalProvider looks addresses up in mmdb files on disk: a city-level
// geo database plus an optional ASN database, opened lazily through a
// shared ReaderRegistry.
type LocalProvider struct {
	dir      string
	registry *ReaderRegistry
}

func NewLocalProvider(dir string, registry *ReaderRegistry) *LocalProvider {
	return &LocalProvider{
		dir:      dir,
		registry: registry,
	}
}

func (p *LocalProvider) Name() string {
	return NameLocal
}

func (p *LocalProvider) Available() bool {
	return utils.FileExists(filepath.Join(p.dir, CityDatabaseFile))
}

func (p *LocalProvider) Lookup(ctx context.Context, address string) (*utils.Result, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, &utils.IPAddressError{}
	}

	readers, err := p.registry.open(p.dir)
	if err != nil {
		return nil, err
	}

	city, err := readers.city.City(ip)
	if err != nil {
		return nil, err
	}

	// mmdb lookups report absence as an all-zero record, not an error
	if emptyCityRecord(city) {
		return nil, &utils.RecordNotFoundError{IP: address}
	}

	geo := utils.Location{
		IP:          address,
		Country:     city.Country.Names["en"],
		CountryCode: city.Country.IsoCode,
		City:        city.City.Names["en"],
		Timezone:    city.Location.TimeZone,
		Postal:      city.Postal.Code,
	}

	if len(city.Subdivisions) > 0 {
		geo.Region = city.Subdivisions[0].Names["en"]
	}

	if city.Location.Latitude != 0 || city.Location.Longitude != 0 {
		lat := city.Location.Latitude
		lon := city.Location.Longitude
		geo.Latitude = &lat
		geo.Longitude = &lon
	}

	result := &utils.Result{
		IP:       address,
		Geo:      geo,
		Provider: NameLocal,
	}

	if readers.asn != nil {
		if asn, err := readers.asn.ASN(ip); err == nil && asn.AutonomousSystemNumber != 0 {
			result.Network = &utils.Network{
				ASN: asn.AutonomousSystemNumber,
				Org: asn.AutonomousSystemOrganization,
			}
		}
	}

	return result, nil
}

func emptyCityRecord(city *geoip2.City) bool {
	return city.Country.IsoCode == "" &&
		city.City.GeoNameID == 0 &&
		len(city.Subdivisions) == 0 &&
		city.Location.Latitude == 0 &&
		city.Location.Longitude == 0
}
