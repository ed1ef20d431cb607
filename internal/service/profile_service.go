package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/store"
	"agromarket/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ProfileService handles identity records
type ProfileService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store *store.Store) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateProfileRequest carries the attributes of a profile self-insert. The
// id always comes from the authenticated principal, never the payload.
type CreateProfileRequest struct {
	Role      string   `json:"role" binding:"required"`
	FullName  string   `json:"full_name" binding:"required"`
	Phone     *string  `json:"phone,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Bio       *string  `json:"bio,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

// UpdateProfileRequest carries the mutable profile attributes. Role is
// immutable after creation.
type UpdateProfileRequest struct {
	FullName  string   `json:"full_name" binding:"required"`
	Phone     *string  `json:"phone,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Bio       *string  `json:"bio,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

// CreateProfile records the requester's own profile.
func (s *ProfileService) CreateProfile(ctx context.Context, requester policy.Requester, req *CreateProfileRequest) (*models.Profile, error) {
	ctx, span := util.StartSpan(ctx, "ProfileService.CreateProfile")
	defer span.End()

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.ValidRole(role) {
		return nil, validationError("role must be %q or %q", models.RoleFarmer, models.RoleRetailer)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, validationError("full_name is required")
	}

	profile := &models.Profile{
		ID:        requester.ID,
		Role:      role,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}

	if !policy.CanInsertProfile(requester, profile) {
		util.PolicyDenialsTotal.WithLabelValues("profiles", "insert").Inc()
		return nil, ErrNotPermitted
	}

	if err := s.store.CreateProfile(ctx, profile); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("Profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", profile.Role))
	return profile, nil
}

// GetProfile retrieves any profile; all authenticated principals may read all
// identity records.
func (s *ProfileService) GetProfile(ctx context.Context, requester policy.Requester, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.store.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadProfile(requester, profile) {
		return nil, store.ErrNotFound
	}
	return profile, nil
}

// ListProfiles returns the participant directory for a role, so retailers
// can browse farmers and vice versa.
func (s *ProfileService) ListProfiles(ctx context.Context, requester policy.Requester, role string) ([]models.Profile, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return nil, validationError("role must be %q or %q", models.RoleFarmer, models.RoleRetailer)
	}

	profiles, err := s.store.GetProfilesByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Profile, 0, len(profiles))
	for i := range profiles {
		if policy.CanReadProfile(requester, &profiles[i]) {
			visible = append(visible, profiles[i])
		}
	}
	return visible, nil
}

// UpdateProfile updates the requester's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, requester policy.Requester, id uuid.UUID, req *UpdateProfileRequest) (*models.Profile, error) {
	ctx, span := util.StartSpan(ctx, "ProfileService.UpdateProfile")
	defer span.End()

	old, err := s.store.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *old
	updated.FullName = req.FullName
	updated.Phone = req.Phone
	updated.Location = req.Location
	updated.Latitude = req.Latitude
	updated.Longitude = req.Longitude
	updated.Bio = req.Bio
	updated.AvatarURL = req.AvatarURL

	if !policy.CanUpdateProfile(requester, old, &updated) {
		util.PolicyDenialsTotal.WithLabelValues("profiles", "update").Inc()
		return nil, ErrNotPermitted
	}

	if err := s.store.UpdateProfile(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}
