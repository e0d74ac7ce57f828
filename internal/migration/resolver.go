package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
)

// Resolver maps natural keys of earlier entities onto destination ids.
// Positive results are cached for the lifetime of the resolver; misses are
// looked up again because later steps may have inserted the target.
type Resolver struct {
	writer   datastore.DestinationWriter
	ref      *conf.ReferenceData
	cache    *cache.Cache
	variants map[string]string // normalized variant name -> canonical name
	log      logger.Logger
}

// NewResolver creates a Resolver for one run.
func NewResolver(writer datastore.DestinationWriter, ref *conf.ReferenceData, log logger.Logger) *Resolver {
	variants := make(map[string]string)
	for _, loc := range ref.Locations {
		for _, v := range loc.Variants {
			variants[normalizeName(v)] = loc.Name
		}
	}

	return &Resolver{
		writer: writer,
		ref:    ref,
		// No janitor goroutine: entries never expire within a run.
		cache:    cache.New(cache.NoExpiration, 0),
		variants: variants,
		log:      log.Module("resolver"),
	}
}

// ResolveUser returns the id of the user with email, compared
// case-insensitively.
func (r *Resolver) ResolveUser(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.ResolutionError("No user found for email: ")
	}
	return r.lookup(ctx, "user:"+email,
		fmt.Sprintf("No user found for email: %s", email),
		"SELECT id FROM users WHERE LOWER(email) = ?", email)
}

// OptionalUser resolves an actor reference. Unknown actors are not an
// error; they leave the actor unset.
func (r *Resolver) OptionalUser(ctx context.Context, email *string) (*string, error) {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil, nil
	}
	id, err := r.ResolveUser(ctx, *email)
	if err != nil {
		if errors.IsRecordLevel(err) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// ResolveRole returns the id of the role called name. Roles have no
// default.
func (r *Resolver) ResolveRole(ctx context.Context, name string) (string, error) {
	return r.lookup(ctx, "role:"+name,
		fmt.Sprintf("No role found for name: %s", name),
		"SELECT id FROM roles WHERE name = ?", name)
}

// ResolveRegion returns the id of the region called name.
func (r *Resolver) ResolveRegion(ctx context.Context, name string) (string, error) {
	return r.lookup(ctx, "region:"+name,
		fmt.Sprintf("No region found for name: %s", name),
		"SELECT id FROM regions WHERE name = ?", name)
}

// ResolveRoom returns the id of the room called name.
func (r *Resolver) ResolveRoom(ctx context.Context, name string) (string, error) {
	return r.lookup(ctx, "room:"+name,
		fmt.Sprintf("No room found for name: %s", name),
		"SELECT id FROM rooms WHERE name = ?", name)
}

// ResolveBooking returns the booking owned by a case.
func (r *Resolver) ResolveBooking(ctx context.Context, caseID string) (string, error) {
	return r.lookup(ctx, "booking:"+caseID,
		fmt.Sprintf("No booking found for case id: %s", caseID),
		"SELECT id FROM bookings WHERE case_id = ?", caseID)
}

// ResolveBookingForRecording returns the booking a staged recording
// belongs to.
func (r *Resolver) ResolveBookingForRecording(ctx context.Context, recordingID string) (string, error) {
	return r.lookup(ctx, "recording-booking:"+recordingID,
		fmt.Sprintf("No booking id found for recordinguid: %s", recordingID),
		"SELECT booking_id FROM temp_recordings WHERE recording_id = ?", recordingID)
}

// ResolveLocation returns the id of the location matching name, or the
// default location when nothing matches.
func (r *Resolver) ResolveLocation(ctx context.Context, name string) (string, error) {
	id, ok, err := r.MatchLocation(ctx, name)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}

	defaultName := r.ref.DefaultLocation.Name
	id, ok, err = r.MatchLocation(ctx, defaultName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.ResolutionError(fmt.Sprintf("Default location %s not found in the courts table.", defaultName))
	}

	r.log.Debug("location resolved to default",
		logger.String("name", name),
		logger.String("default", defaultName))
	return id, nil
}

// MatchLocation looks a location up by name without falling back to the
// default. Names match after normalization, through the variant table, or
// on their core name when that core is unique.
func (r *Resolver) MatchLocation(ctx context.Context, name string) (string, bool, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", false, nil
	}

	cacheKey := "location:" + normalized
	if id, found := r.cache.Get(cacheKey); found {
		return id.(string), true, nil
	}

	var courts []struct {
		ID   string `gorm:"column:id"`
		Name string `gorm:"column:name"`
	}
	if err := r.writer.Query(ctx, &courts, "SELECT id, name FROM courts"); err != nil {
		return "", false, err
	}

	byName := make(map[string]string, len(courts))
	byCore := make(map[string][]string, len(courts))
	for _, c := range courts {
		n := normalizeName(c.Name)
		byName[n] = c.ID
		core := coreLocationName(n)
		byCore[core] = append(byCore[core], c.ID)
	}

	id, ok := byName[normalized]
	if !ok {
		if canonical, isVariant := r.variants[normalized]; isVariant {
			id, ok = byName[normalizeName(canonical)]
		}
	}
	if !ok {
		if ids := byCore[coreLocationName(normalized)]; len(ids) == 1 {
			id, ok = ids[0], true
		}
	}
	if !ok {
		return "", false, nil
	}

	r.cache.Set(cacheKey, id, cache.NoExpiration)
	return id, true, nil
}

// lookup runs a single-column id query, caching hits under key.
func (r *Resolver) lookup(ctx context.Context, key, missMessage, sql string, args ...any) (string, error) {
	if id, found := r.cache.Get(key); found {
		return id.(string), nil
	}

	var ids []string
	if err := r.writer.Query(ctx, &ids, sql, args...); err != nil {
		return "", err
	}
	if len(ids) == 0 || ids[0] == "" {
		return "", errors.ResolutionError(missMessage)
	}

	r.cache.Set(key, ids[0], cache.NoExpiration)
	return ids[0], nil
}
