package utils

// Location is the geolocation part of a lookup. Every field except IP
// is best-effort and may be absent depending on the provider and its
// data coverage.
type Location struct {
	IP          string   `json:"ip"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Region      string   `json:"region,omitempty"`
	City        string   `json:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	Postal      string   `json:"postal,omitempty"`
}

// Network identifies the owner of the address block. Either field may
// be present without the other (e.g. an ISP name without a resolvable
// ASN).
type Network struct {
	ASN uint   `json:"asn,omitempty"`
	Org string `json:"org,omitempty"`
}

// Classification flags an address as CDN/cloud/hosting/security
// infrastructure. Provider, Category and Note are only populated when
// IsCDN is true.
type Classification struct {
	IsCDN    bool   `json:"is_cdn"`
	Provider string `json:"provider,omitempty"`
	Category string `json:"category,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Result is the unit of output for a single lookup. Error is set if
// and only if the lookup could not produce usable geo data; when it is
// set, IP may be empty and Network/Classification are absent.
type Result struct {
	Input          string          `json:"input"`
	IP             string          `json:"ip"`
	Geo            Location        `json:"geo"`
	Network        *Network        `json:"network,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	Cached         bool            `json:"cached,omitempty"`
	Error          string          `json:"error,omitempty"`
}
