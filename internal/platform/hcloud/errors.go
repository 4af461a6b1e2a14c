package hcloud

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/nodefleet/internal/provider"
)

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if an error indicates a resource was not found. Deletes
// treat it as success since the resource is already gone.
func IsNotFound(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}

// apiError normalises a failed call. Errors without an hcloud error code
// (transport failures) are wrapped with the operation only.
func apiError(op string, resp *hcloud.Response, err error) error {
	if err == nil {
		return nil
	}

	var hcloudErr hcloud.Error
	if !errors.As(err, &hcloudErr) {
		return fmt.Errorf("%s %s: %w", ProviderName, op, err)
	}

	apiErr := &provider.APIError{
		Provider:  ProviderName,
		Operation: op,
		Reason:    string(hcloudErr.Code),
		Message:   hcloudErr.Message,
		Err:       err,
	}
	if resp != nil && resp.Response != nil {
		apiErr.StatusCode = resp.StatusCode
	}
	return apiErr
}

// notFound reports a lookup that returned no resource.
func notFound(op, kind, id string) error {
	return &provider.APIError{
		Provider:   ProviderName,
		Operation:  op,
		StatusCode: 404,
		Reason:     string(hcloud.ErrorCodeNotFound),
		Message:    fmt.Sprintf("%s %s not found", kind, id),
	}
}

// parseID converts a provider id string back to an hcloud id.
func parseID(kind, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, id)
	}
	return n, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
