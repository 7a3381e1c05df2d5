package utils

import "fmt"

type IPAddressError struct{}

func (e *IPAddressError) Error() string {
	return "invalid IP address"
}

type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q: must be local, ipinfo or auto", e.Name)
}

type ResolveError struct {
	Input string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not resolve %s to an IP address", e.Input)
}

type DatabaseNotFoundError struct {
	Path string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("geo database not found at %s: run `geotrace fetch` to download it", e.Path)
}

type RecordNotFoundError struct {
	IP string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("IP %s not found in the local database", e.IP)
}

type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "rate limited by ipinfo.io (HTTP 429): use the local provider or set an API token"
}

type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ipinfo.io responded with HTTP %d", e.StatusCode)
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode ipinfo.io response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to ipinfo.io failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type ErrorResponse struct {
	Error string `json:"error"`
}
