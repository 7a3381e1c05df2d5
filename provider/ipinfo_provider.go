package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cloud66-oss/geotrace/utils"
)

const (
	ipinfoEndpoint = "https://ipinfo.io"

	requestTimeout = 10 * time.Second
	// one initial attempt plus two retries
	maxAttempts = 3
	backoffStep = time.Second
)

var orgPattern = regexp.MustCompile(`^AS(\d+)\s+(.+)$`)

type ipinfoResponse struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
}

// IPInfoProvider looks addresses up via the ipinfo.io HTTP API.
// Transient failures (5xx, network errors, timeouts) are retried with
// linear backoff; HTTP 429 is returned immediately with remediation
// advice since retrying a rate-limited endpoint only digs the hole
// deeper.
type IPInfoProvider struct {
	token    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	retry    RetryPolicy
}

func NewIPInfoProvider(token string) *IPInfoProvider {
	limit := rate.Limit(10)
	burst := 5
	if token == "" {
		// ipinfo.io throttles unauthenticated clients hard, stay well
		// under their limit
		limit = rate.Limit(2)
		burst = 1
	}

	return &IPInfoProvider{
		token:    token,
		endpoint: ipinfoEndpoint,
		client:   &http.Client{Timeout: requestTimeout},
		limiter:  rate.NewLimiter(limit, burst),
		retry: RetryPolicy{
			MaxAttempts: maxAttempts,
			Backoff:     LinearBackoff(backoffStep),
			Retryable:   retryableAPIError,
		},
	}
}

func retryableAPIError(err error) bool {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	var reqErr *utils.RequestError
	return errors.As(err, &reqErr)
}

func (p *IPInfoProvider) Name() string {
	return NameIPInfo
}

func (p *IPInfoProvider) Available() bool {
	// network egress is presumed reachable
	return true
}

func (p *IPInfoProvider) Lookup(ctx context.Context, address string) (*utils.Result, error) {
	var body ipinfoResponse

	err := p.retry.Do(ctx, func(ctx context.Context) error {
		return p.fetch(ctx, address, &body)
	})
	if err != nil {
		return nil, err
	}

	return p.buildResult(address, &body), nil
}

func (p *IPInfoProvider) fetch(ctx context.Context, address string, out *ipinfoResponse) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &utils.RequestError{Err: err}
	}

	target := p.endpoint + "/" + address
	if p.token != "" {
		target += "?token=" + url.QueryEscape(p.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &utils.RequestError{Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &utils.RequestError{Err: err}
	}

	defer func() {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &utils.RateLimitError{}
	case resp.StatusCode != http.StatusOK:
		return &utils.APIError{StatusCode: resp.StatusCode}
	}

	// a malformed 200 body is not transient, so it must not come back
	// as a retryable request error
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &utils.DecodeError{Err: err}
	}

	return nil
}

func (p *IPInfoProvider) buildResult(address string, body *ipinfoResponse) *utils.Result {
	geo := utils.Location{
		IP:          address,
		CountryCode: body.Country,
		Region:      body.Region,
		City:        body.City,
		Timezone:    body.Timezone,
		Postal:      body.Postal,
	}

	if lat, lon, ok := splitLoc(body.Loc); ok {
		geo.Latitude = &lat
		geo.Longitude = &lon
	}

	result := &utils.Result{
		IP:       address,
		Geo:      geo,
		Provider: NameIPInfo,
	}

	if body.Org != "" {
		result.Network = parseOrg(body.Org)
	}

	return result
}

// parseOrg decomposes ipinfo's combined org string, e.g.
// "AS15169 Google LLC" into ASN 15169 and org "Google LLC". Anything
// not matching that shape is kept as a bare organization name.
func parseOrg(org string) *utils.Network {
	if m := orgPattern.FindStringSubmatch(org); m != nil {
		if asn, err := strconv.ParseUint(m[1], 10, 32); err == nil {
			return &utils.Network{ASN: uint(asn), Org: m[2]}
		}
	}

	return &utils.Network{Org: org}
}

func splitLoc(loc string) (lat float64, lon float64, ok bool) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}

	return lat, lon, true
}
