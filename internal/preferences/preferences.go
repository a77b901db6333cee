package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"calendar-assistant/pkg/log"
)

// ErrNotSet is returned by repositories when the user has no stored zone.
var ErrNotSet = errors.New("preference not set")

// ErrInvalidTimezone rejects zone names the tz database does not know.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Repository is the persistence contract for user preferences.
type Repository interface {
	GetTimezone(ctx context.Context, userID string) (string, error)
	SetTimezone(ctx context.Context, userID, zone string) error
}

const cacheSize = 1024

// Service resolves per-user timezones with a read-through cache in
// front of the repository. Lookups happen on every message, writes
// almost never, so a small LRU keeps the hot path off the database.
type Service struct {
	l           log.Logger
	repo        Repository
	cache       *lru.Cache[string, string]
	defaultZone string
}

func NewService(l log.Logger, repo Repository, defaultZone string) (*Service, error) {
	if _, err := time.LoadLocation(defaultZone); err != nil {
		return nil, fmt.Errorf("loading default timezone %q: %w", defaultZone, err)
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{l: l, repo: repo, cache: cache, defaultZone: defaultZone}, nil
}

// Location returns the user's chosen location, falling back to the
// configured default when the user never set one or the stored name no
// longer loads.
func (s *Service) Location(ctx context.Context, userID string) *time.Location {
	zone, ok := s.cache.Get(userID)
	if !ok {
		stored, err := s.repo.GetTimezone(ctx, userID)
		switch {
		case errors.Is(err, ErrNotSet):
			zone = s.defaultZone
		case err != nil:
			s.l.Warnf(ctx, "preferences.Service.Location: %v", err)
			zone = s.defaultZone
		default:
			zone = stored
		}
		s.cache.Add(userID, zone)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		s.l.Warnf(ctx, "preferences.Service.Location: stored zone %q no longer loads: %v", zone, err)
		loc, _ = time.LoadLocation(s.defaultZone)
	}
	return loc
}

// SetTimezone validates the zone name, persists it, and refreshes the
// cache so the next message already sees it.
func (s *Service) SetTimezone(ctx context.Context, userID, zone string) error {
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	if err := s.repo.SetTimezone(ctx, userID, zone); err != nil {
		s.l.Errorf(ctx, "preferences.Service.SetTimezone: %v", err)
		return err
	}
	s.cache.Add(userID, zone)
	return nil
}
