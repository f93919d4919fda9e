package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/user"
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) GetByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.store.GetUserByClerkID(ctx, clerkID)
}

// CreateFromWebhook provisions a profile when Clerk reports user.created.
// Duplicate deliveries are harmless: the insert is idempotent on clerk_id.
func (s *UserService) CreateFromWebhook(ctx context.Context, req *user.CreateUserRequest, emailVerified bool) (*user.User, error) {
	now := time.Now()
	u := &user.User{
		ID:            uuid.New().String(),
		ClerkID:       req.ClerkID,
		Email:         req.Email,
		Username:      req.Username,
		ImageURL:      req.ImageURL,
		EmailVerified: emailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		u.Username = req.Username
	}
	if req.ImageURL != "" {
		u.ImageURL = req.ImageURL
	}
	if req.IsAgeVerified != nil {
		u.IsAgeVerified = *req.IsAgeVerified
	}
	if req.AcceptedTerms != nil {
		u.AcceptedTerms = *req.AcceptedTerms
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	return s.store.DeleteUser(ctx, clerkID)
}

func (s *UserService) AddFavorite(ctx context.Context, clerkID, vendorID string) error {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.store.AddFavorite(ctx, u.ID, vendorID)
}

func (s *UserService) RemoveFavorite(ctx context.Context, clerkID, vendorID string) error {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.store.RemoveFavorite(ctx, u.ID, vendorID)
}

func (s *UserService) Favorites(ctx context.Context, clerkID string) ([]string, error) {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	favorites, err := s.store.ListFavorites(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []string{}
	}
	return favorites, nil
}

func (s *UserService) Preferences(ctx context.Context, clerkID string) (user.Preferences, error) {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.GetPreferences(ctx, u.ID)
}

func (s *UserService) SetPreferences(ctx context.Context, clerkID string, prefs user.Preferences) error {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.store.SetPreferences(ctx, u.ID, prefs)
}

func (s *UserService) Visits(ctx context.Context, clerkID string) ([]user.Visit, error) {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	visits, err := s.store.ListVisits(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []user.Visit{}
	}
	return visits, nil
}
