package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"

	"github.com/cloud66-oss/geotrace/utils"
)

type ipinfoProviderTestSuite struct {
	suite.Suite
}

// testProvider points the provider at an httptest server and removes
// the client-side throttle and backoff sleeps.
func (suite *ipinfoProviderTestSuite) testProvider(serverURL, token string) *IPInfoProvider {
	p := NewIPInfoProvider(token)
	p.endpoint = serverURL
	p.limiter = rate.NewLimiter(rate.Inf, 1)
	p.retry.Backoff = nil

	return p
}

func (suite *ipinfoProviderTestSuite) TestLookupSuccess() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/8.8.8.8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ip": "8.8.8.8",
			"city": "Mountain View",
			"region": "California",
			"country": "US",
			"loc": "37.4056,-122.0775",
			"org": "AS15169 Google LLC",
			"postal": "94043",
			"timezone": "America/Los_Angeles"
		}`))
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	result, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().NoError(err)
	suite.Equal("8.8.8.8", result.IP)
	suite.Equal("ipinfo", result.Provider)
	suite.Equal("US", result.Geo.CountryCode)
	suite.Equal("Mountain View", result.Geo.City)
	suite.Equal("California", result.Geo.Region)
	suite.Require().NotNil(result.Geo.Latitude)
	suite.InDelta(37.4056, *result.Geo.Latitude, 0.0001)
	suite.Require().NotNil(result.Geo.Longitude)
	suite.InDelta(-122.0775, *result.Geo.Longitude, 0.0001)
	suite.Require().NotNil(result.Network)
	suite.EqualValues(15169, result.Network.ASN)
	suite.Equal("Google LLC", result.Network.Org)
}

func (suite *ipinfoProviderTestSuite) TestLookupOrgWithoutASN() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip": "8.8.8.8", "org": "Google LLC"}`))
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	result, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().NoError(err)
	suite.Require().NotNil(result.Network)
	suite.EqualValues(0, result.Network.ASN)
	suite.Equal("Google LLC", result.Network.Org)
}

func (suite *ipinfoProviderTestSuite) TestRateLimitedNoRetry() {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	_, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().Error(err)

	var rateErr *utils.RateLimitError
	suite.True(errors.As(err, &rateErr))
	suite.Contains(err.Error(), "rate limited")
	suite.Contains(err.Error(), "local provider")
	suite.EqualValues(1, atomic.LoadInt32(&requests))
}

func (suite *ipinfoProviderTestSuite) TestServerErrorRetriesThenSucceeds() {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ip": "8.8.8.8", "country": "US"}`))
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	result, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().NoError(err)
	suite.Equal("US", result.Geo.CountryCode)
	suite.EqualValues(3, atomic.LoadInt32(&requests))
}

func (suite *ipinfoProviderTestSuite) TestServerErrorExhaustsRetries() {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	_, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().Error(err)

	var apiErr *utils.APIError
	suite.True(errors.As(err, &apiErr))
	suite.Equal(http.StatusInternalServerError, apiErr.StatusCode)
	suite.EqualValues(maxAttempts, atomic.LoadInt32(&requests))
}

func (suite *ipinfoProviderTestSuite) TestClientErrorNoRetry() {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	_, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().Error(err)

	var apiErr *utils.APIError
	suite.True(errors.As(err, &apiErr))
	suite.Equal(http.StatusNotFound, apiErr.StatusCode)
	suite.EqualValues(1, atomic.LoadInt32(&requests))
}

func (suite *ipinfoProviderTestSuite) TestMalformedBodyNoRetry() {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(`{"ip": "8.8.8.8", "city": `))
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "")
	_, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.Require().Error(err)

	var decodeErr *utils.DecodeError
	suite.True(errors.As(err, &decodeErr))
	suite.EqualValues(1, atomic.LoadInt32(&requests))
}

func (suite *ipinfoProviderTestSuite) TestTokenPassedAsQueryParam() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("secret-token", r.URL.Query().Get("token"))
		w.Write([]byte(`{"ip": "8.8.8.8"}`))
	}))
	defer server.Close()

	p := suite.testProvider(server.URL, "secret-token")
	_, err := p.Lookup(context.Background(), "8.8.8.8")

	suite.NoError(err)
}

func TestIPInfoProviderTestSuite(t *testing.T) {
	suite.Run(t, new(ipinfoProviderTestSuite))
}

func TestParseOrg(t *testing.T) {
	network := parseOrg("AS13335 Cloudflare, Inc.")
	if network.ASN != 13335 || network.Org != "Cloudflare, Inc." {
		t.Errorf("unexpected network: %+v", network)
	}

	network = parseOrg("not an org string that matches")
	if network.ASN != 0 || network.Org != "not an org string that matches" {
		t.Errorf("unexpected network: %+v", network)
	}
}

func TestSplitLoc(t *testing.T) {
	lat, lon, ok := splitLoc("51.5074,-0.1278")
	if !ok || lat != 51.5074 || lon != -0.1278 {
		t.Errorf("unexpected coordinates: %v %v %v", lat, lon, ok)
	}

	if _, _, ok := splitLoc("garbage"); ok {
		t.Error("expected splitLoc to reject a malformed value")
	}

	if _, _, ok := splitLoc("12.0,abc"); ok {
		t.Error("expected splitLoc to reject non-numeric parts")
	}
}
