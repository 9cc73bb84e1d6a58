package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/models"
)

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpdateProfileInput lists the profile fields a user may change. Email,
// password, and OAuth identifiers are deliberately absent.
type UpdateProfileInput struct {
	Name         *string
	Bio          *string
	Interests    []string
	Availability *models.UserAvailability
}

func (us *UserService) UpdateProfile(ctx context.Context, user *models.User, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, &apperrors.Error{
				Domain:  apperrors.DomainUser,
				Kind:    apperrors.KindInvalid,
				Message: "name cannot be empty",
				Fields:  []string{"name"},
			}
		}
		fields["name"] = *in.Name
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Interests != nil {
		fields["interests"] = in.Interests
	}
	if in.Availability != nil {
		fields["availability"] = in.Availability
	}
	if len(fields) == 0 {
		return nil, apperrors.User(apperrors.KindInvalid, "no fields to update")
	}

	updated, err := us.userRepo.UpdateProfile(ctx, user.ID, fields)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.User(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Server("failed to update profile")
	}
	return updated, nil
}

func (us *UserService) UpdateSettings(ctx context.Context, user *models.User, settings models.UserSettings) (*models.User, error) {
	updated, err := us.userRepo.UpdateSettings(ctx, user.ID, settings)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.User(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Server("failed to update settings")
	}
	return updated, nil
}

// GetUserProfile loads another user's profile, honoring their privacy
// settings: a non-public profile is visible to its owner and their friends
// only.
func (us *UserService) GetUserProfile(ctx context.Context, caller *models.User, userID primitive.ObjectID) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.User(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Server("failed to load user")
	}

	if !user.Settings.Privacy.PublicProfile {
		if caller == nil || (caller.ID != user.ID && !user.HasFriend(caller.ID)) {
			return nil, apperrors.User(apperrors.KindPermissionDenied, "this profile is private")
		}
	}
	return user, nil
}

// AddFriend creates a symmetric friendship edge.
func (us *UserService) AddFriend(ctx context.Context, user *models.User, friendID primitive.ObjectID) error {
	if user.ID == friendID {
		return apperrors.User(apperrors.KindInvalid, "you cannot add yourself as a friend")
	}

	friend, err := us.userRepo.GetUserByID(ctx, friendID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperrors.User(apperrors.KindNotFound, "user not found")
		}
		return apperrors.Server("failed to load user")
	}
	if user.HasFriend(friend.ID) {
		return apperrors.User(apperrors.KindDuplicate, "you are already friends")
	}

	if err := us.userRepo.AddFriend(ctx, user.ID, friendID); err != nil {
		return apperrors.Server("failed to add friend")
	}
	return nil
}

// RemoveFriend removes the edge from both sides. Removing a non-friend is a
// no-op rather than an error.
func (us *UserService) RemoveFriend(ctx context.Context, user *models.User, friendID primitive.ObjectID) error {
	if err := us.userRepo.RemoveFriend(ctx, user.ID, friendID); err != nil {
		return apperrors.Server("failed to remove friend")
	}
	return nil
}
