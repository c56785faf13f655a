package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/repositories"
	"github.com/racefan-dev/fantasy-chase/storage"
)

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// UserService covers the profile surface: display name and avatar.
type UserService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, uploader: uploader, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	s.fillAvatarURL(user)
	return user, nil
}

func (s *UserService) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("display name must not be empty")
	}
	if err := s.userRepo.UpdateDisplayName(ctx, userID, displayName); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// UploadAvatar stores a new profile image and replaces the previous one.
func (s *UserService) UploadAvatar(ctx context.Context, userID, contentType string, reader io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}

	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrInvalidAvatar
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	key := fmt.Sprintf("avatars/%s.%s", uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	previousKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, key); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if previousKey != nil && *previousKey != key {
		if err := s.uploader.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", "user_id", userID, "key", *previousKey, "error", err)
		}
	}

	user.AvatarKey = &key
	s.fillAvatarURL(user)
	return user, nil
}

func (s *UserService) fillAvatarURL(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
