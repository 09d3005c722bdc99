package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolver is the location resolver: first geocoding result wins.
type Resolver struct {
	geocoder Geocoder
}

// NewResolver creates a Resolver on top of a Geocoder.
func NewResolver(g Geocoder) *Resolver {
	return &Resolver{geocoder: g}
}

// Resolve geocodes query. A blank query is a no-op: it returns ok=false and never
// calls the geocoder.
func (r *Resolver) Resolve(ctx context.Context, query string) (Place, bool, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Place{}, false, nil
	}

	places, err := r.geocoder.Geocode(ctx, q)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingCredential) {
			return Place{}, false, err
		}
		return Place{}, false, fmt.Errorf("%w: %q: %w", ErrLocationResolutionFailed, q, err)
	}
	if len(places) == 0 {
		return Place{}, false, fmt.Errorf("%w: %q", ErrNotFound, q)
	}

	best := places[0]
	if !best.Valid() {
		return Place{}, false, fmt.Errorf("%w: %q: geocoder returned %s", ErrLocationResolutionFailed, q, best.Key())
	}
	if best.Name == "" {
		best.Name = strings.Clone(q)
	}
	return best, true, nil
}
