package provider

import (
	"path/filepath"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"

	"github.com/cloud66-oss/geotrace/utils"
)

const (
	CityDatabaseFile = "GeoLite2-City.mmdb"
	ASNDatabaseFile  = "GeoLite2-ASN.mmdb"
)

// ReaderRegistry shares parsed mmdb readers between providers pointed
// at the same database directory, so the files are parsed once no
// matter how many providers or workers use them. Initialization is
// idempotent under concurrent first access; the readers are read-only
// afterwards and safe for concurrent lookups.
type ReaderRegistry struct {
	mu      sync.Mutex
	entries map[string]*readerEntry
}

type readerEntry struct {
	once sync.Once
	city *geoip2.Reader
	asn  *geoip2.Reader
	err  error
}

func NewReaderRegistry() *ReaderRegistry {
	return &ReaderRegistry{
		entries: map[string]*readerEntry{},
	}
}

func (r *ReaderRegistry) open(dir string) (*readerEntry, error) {
	r.mu.Lock()
	entry, ok := r.entries[dir]
	if !ok {
		entry = &readerEntry{}
		r.entries[dir] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		cityPath := filepath.Join(dir, CityDatabaseFile)
		if !utils.FileExists(cityPath) {
			entry.err = &utils.DatabaseNotFoundError{Path: cityPath}
			return
		}

		city, err := geoip2.Open(cityPath)
		if err != nil {
			entry.err = err
			return
		}
		entry.city = city

		// the ASN database is optional enrichment; its absence must
		// never fail a lookup
		asnPath := filepath.Join(dir, ASNDatabaseFile)
		if utils.FileExists(asnPath) {
			asn, err := geoip2.Open(asnPath)
			if err != nil {
				log.Warn().Err(err).Str("path", asnPath).Msg("failed to open ASN database, continuing without it")
			} else {
				entry.asn = asn
			}
		}
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return entry, nil
}

// Close releases all parsed readers and empties the registry. The next
// lookup re-opens the databases. Used for shutdown and test isolation.
func (r *ReaderRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.city != nil {
			entry.city.Close()
		}
		if entry.asn != nil {
			entry.asn.Close()
		}
	}

	r.entries = map[string]*readerEntry{}
}
