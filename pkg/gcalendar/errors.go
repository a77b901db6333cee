package gcalendar

import (
	"errors"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound means the event does not exist (or is already gone).
	ErrNotFound = errors.New("calendar event not found")
	// ErrAuth means the backend rejected our credentials; the user has to
	// reconnect before anything else will work.
	ErrAuth = errors.New("calendar authentication failed")
)

// classify maps a calendar API error onto the package's typed errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404, 410:
			return ErrNotFound
		case 401, 403:
			return ErrAuth
		}
	}
	return err
}
