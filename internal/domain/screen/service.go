package screen

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/utils"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, ownerUID ids.UserID, in CreateScreenInput) (*Screen, error) {
	in.Trim()

	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.DayPrice <= 0 {
		return nil, fmt.Errorf("%w: dayPrice must be positive", ErrBadRequest)
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}
	if err := validateTimezone(in.Timezone); err != nil {
		return nil, err
	}
	if err := ValidateAvailability(in.Availability); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nameLower := utils.NormalizeNameLower(in.Name)
	slug := utils.Slugify(in.Name)

	sc := Screen{
		OwnerID:      ownerUID,
		Name:         in.Name,
		NameLower:    nameLower,
		Slug:         slug,
		Description:  utils.TrimMax(in.Description, 2000),
		DayPrice:     in.DayPrice,
		Currency:     in.Currency,
		Location:     in.Location,
		Address:      in.Address,
		Timezone:     in.Timezone,
		Availability: in.Availability,
		IsActive:     true,
		SearchTokens: utils.SearchTokens(in.Name, in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.Create(ctx, sc)
}

func (s *Service) Get(ctx context.Context, id ids.ScreenID) (*Screen, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: screenId is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, callerUID ids.UserID, id ids.ScreenID, in UpdateScreenInput) (*Screen, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != callerUID {
		return nil, fmt.Errorf("%w: only the owner can update a screen", ErrUnauthorized)
	}

	updates := map[string]any{}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrBadRequest)
		}
		updates["name"] = *in.Name
		updates["nameLower"] = utils.NormalizeNameLower(*in.Name)
		updates["slug"] = utils.Slugify(*in.Name)
		updates["searchTokens"] = utils.SearchTokens(*in.Name, existing.Address)
	}
	if in.Description != nil {
		updates["description"] = utils.TrimMax(*in.Description, 2000)
	}
	if in.DayPrice != nil {
		if *in.DayPrice <= 0 {
			return nil, fmt.Errorf("%w: dayPrice must be positive", ErrBadRequest)
		}
		updates["dayPrice"] = *in.DayPrice
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Timezone != nil {
		if err := validateTimezone(*in.Timezone); err != nil {
			return nil, err
		}
		updates["timezone"] = *in.Timezone
	}
	if in.Availability != nil {
		if err := ValidateAvailability(*in.Availability); err != nil {
			return nil, err
		}
		updates["availability"] = *in.Availability
	}
	if in.IsActive != nil {
		updates["isActive"] = *in.IsActive
	}

	return s.repo.Update(ctx, id, updates)
}

// Deactivate soft-removes a listing. Bookings referencing it stay intact.
func (s *Service) Deactivate(ctx context.Context, callerUID ids.UserID, id ids.ScreenID) error {
	active := false
	_, err := s.Update(ctx, callerUID, id, UpdateScreenInput{IsActive: &active})
	return err
}

func (s *Service) ListByOwner(ctx context.Context, ownerUID ids.UserID, activeOnly bool) ([]Screen, error) {
	if ownerUID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrBadRequest)
	}
	return s.repo.List(ctx, ListScreensInput{OwnerID: ownerUID, ActiveOnly: activeOnly})
}

func (s *Service) Search(ctx context.Context, q string, limit int64) ([]Screen, error) {
	token := utils.NormalizeNameLower(q)
	if token == "" {
		return s.repo.List(ctx, ListScreensInput{ActiveOnly: true, Limit: limit})
	}
	return s.repo.Search(ctx, token, limit)
}

var timeFormatRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateAvailability checks that every weekday's ranges use HH:MM times,
// are strictly ordered within themselves, and do not overlap each other.
func ValidateAvailability(av Availability) error {
	for day, ranges := range av {
		d, err := strconv.Atoi(day)
		if err != nil || d < 0 || d > 6 {
			return fmt.Errorf("%w: availability day %q must be 0-6", ErrBadRequest, day)
		}
		if !sort.SliceIsSorted(ranges, func(i, j int) bool {
			return ranges[i].Start < ranges[j].Start
		}) {
			return fmt.Errorf("%w: availability for day %s must be sorted by start time", ErrBadRequest, day)
		}
		prevEnd := ""
		for _, tr := range ranges {
			if !timeFormatRegex.MatchString(tr.Start) || !timeFormatRegex.MatchString(tr.End) {
				return fmt.Errorf("%w: availability times must be HH:MM", ErrBadRequest)
			}
			if tr.Start >= tr.End {
				return fmt.Errorf("%w: availability range %s-%s is empty or inverted", ErrBadRequest, tr.Start, tr.End)
			}
			if prevEnd != "" && tr.Start < prevEnd {
				return fmt.Errorf("%w: availability ranges overlap on day %s", ErrBadRequest, day)
			}
			prevEnd = tr.End
		}
	}
	return nil
}

func validateTimezone(tz string) error {
	if tz == "" {
		return fmt.Errorf("%w: timezone is required", ErrBadRequest)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: invalid timezone %q", ErrBadRequest, tz)
	}
	return nil
}
