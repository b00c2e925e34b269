package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/stagebook/internal/model"
)

// VenueInput is the data needed to register an additional venue.
type VenueInput struct {
	Name    string
	City    string
	Address string
}

// VenueService lets VENUE accounts manage the venues they own.  The
// first venue is created with the account.
type VenueService struct {
	d *Deps
}

func NewVenueService(d *Deps) *VenueService {
	return &VenueService{d: d}
}

// ListMine returns the caller's venues, oldest first.
func (s *VenueService) ListMine(ctx context.Context, p model.Principal) ([]model.Venue, error) {
	if p.Role != model.RoleVenue {
		return nil, ErrForbidden
	}
	out, err := s.d.Venues.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if out == nil {
		out = []model.Venue{}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create registers another venue owned by the caller.
func (s *VenueService) Create(ctx context.Context, p model.Principal, in VenueInput) (model.Venue, error) {
	if p.Role != model.RoleVenue {
		return model.Venue{}, ErrForbidden
	}
	v := model.Venue{
		OwnerUserID: p.UserID,
		Name:        strings.TrimSpace(in.Name),
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
	}
	if v.Name == "" {
		return model.Venue{}, &ValidationError{Errors: []string{"Venue name is required"}}
	}
	if err := s.d.Venues.Create(ctx, &v); err != nil {
		return model.Venue{}, fmt.Errorf("create venue: %w", err)
	}
	return v, nil
}
