package openstack

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud"

	"github.com/imamik/nodefleet/internal/provider"
)

// apiError normalises a failed call. Responses with an unexpected status
// code become a provider.APIError; anything else (auth, transport) is
// wrapped with the operation only.
func apiError(op string, err error) error {
	if err == nil {
		return nil
	}

	var codeErr gophercloud.StatusCodeError
	if !errors.As(err, &codeErr) {
		return fmt.Errorf("%s %s: %w", ProviderName, op, err)
	}

	code := codeErr.GetStatusCode()
	return &provider.APIError{
		Provider:   ProviderName,
		Operation:  op,
		StatusCode: code,
		Reason:     http.StatusText(code),
		Message:    err.Error(),
		Err:        err,
	}
}

// IsNotFound reports whether err is a 404 from either API.
func IsNotFound(err error) bool {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	var codeErr gophercloud.StatusCodeError
	return errors.As(err, &codeErr) && codeErr.GetStatusCode() == http.StatusNotFound
}
