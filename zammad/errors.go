package zammad

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrBaseURLRequired  = errors.New("zammad: base URL is required")
	ErrTokenRequired    = errors.New("zammad: API token is required")
	ErrAuthentication   = errors.New("zammad: authentication failed")
	ErrPermissionDenied = errors.New("zammad: permission denied")
	ErrNotFound         = errors.New("zammad: record not found")
)

// StatusError captures a non-retryable HTTP failure from the upstream API.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("zammad: %s returned HTTP %d", e.Path, e.Status)
}

// classifyStatus maps terminal HTTP statuses onto the error taxonomy the
// pipeline branches on. 401/403 classify as auth and are never retried;
// 404 classifies as not-found so callers can treat it as absence.
func classifyStatus(path string, status int) error {
	switch status {
	case http.StatusUnauthorized:
		return goerrors.Wrap(ErrAuthentication, goerrors.CategoryAuth,
			fmt.Sprintf("zammad: authentication failed on %s, check the API token", path)).
			WithTextCode("AUTH_FAILED")
	case http.StatusForbidden:
		return goerrors.Wrap(ErrPermissionDenied, goerrors.CategoryAuth,
			fmt.Sprintf("zammad: permission denied on %s, check the token's role permissions", path)).
			WithTextCode("PERMISSION_DENIED")
	case http.StatusNotFound:
		return goerrors.Wrap(ErrNotFound, goerrors.CategoryNotFound,
			fmt.Sprintf("zammad: %s not found", path)).
			WithTextCode("NOT_FOUND")
	default:
		return goerrors.Wrap(&StatusError{Path: path, Status: status}, goerrors.CategoryExternal,
			fmt.Sprintf("zammad: request to %s failed", path)).
			WithTextCode("REQUEST_FAILED")
	}
}

// IsAuth reports whether err is an authentication or permission failure.
func IsAuth(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryAuth)
}

// IsNotFound reports whether err represents a missing upstream record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || goerrors.IsCategory(err, goerrors.CategoryNotFound)
}
