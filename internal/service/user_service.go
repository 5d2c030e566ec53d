package service

import (
	"context"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const (
	maxBioLen         = 2000
	maxDisplayNameLen = 80
)

// UserService implements profile and engagement stats logic.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	UserID       uint
	DisplayName  *string
	FirstName    *string
	LastName     *string
	Bio          *string
	Program      *string
	Grade        *string
	ShowRealName *bool
}

// UserStats is the engagement summary for a profile.
type UserStats struct {
	Posts    int64             `json:"posts"`
	Comments int64             `json:"comments"`
	Likes    int64             `json:"likes"`
	Score    int               `json:"score"`
	Level    models.LevelRange `json:"level"`
}

// PublicProfile is the viewer-safe projection of another user.
type PublicProfile struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Program     string `json:"program"`
	Grade       string `json:"grade"`
	Avatar      string `json:"avatar,omitempty"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the user's own full record.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetPublicProfile returns the public-safe projection of a user.
func (s *UserService) GetPublicProfile(ctx context.Context, userID uint) (*PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.PublicName(),
		Bio:         user.Bio,
		Program:     user.Program,
		Grade:       user.Grade,
		Avatar:      user.Avatar,
	}, nil
}

// UpdateProfile applies a partial update. The bio is stored as sanitized
// plain text.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if len(name) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 80 characters)")
		}
		user.DisplayName = name
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		bio := validation.SanitizePlainText(*in.Bio)
		if len(bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 2000 characters)")
		}
		user.Bio = bio
	}
	if in.Program != nil {
		user.Program = strings.TrimSpace(*in.Program)
	}
	if in.Grade != nil {
		user.Grade = strings.TrimSpace(*in.Grade)
	}
	if in.ShowRealName != nil {
		user.ShowRealName = *in.ShowRealName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetStats returns live content counts with the derived score and level.
// The summary is cached briefly; counts can lag content writes by the TTL.
func (s *UserService) GetStats(ctx context.Context, userID uint) (*UserStats, error) {
	var stats UserStats
	err := cache.Aside(ctx, cache.UserStatsKey(userID), &stats, cache.UserStatsTTL, func() error {
		posts, comments, likes, err := s.userRepo.CountContent(ctx, userID)
		if err != nil {
			return err
		}
		score := models.EngagementScore(posts, comments, likes)
		stats = UserStats{
			Posts:    posts,
			Comments: comments,
			Likes:    likes,
			Score:    score,
			Level:    models.LevelForScore(score),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
