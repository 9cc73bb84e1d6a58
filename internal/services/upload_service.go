package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/connect"
	"github.com/goplan-app/goplan-server/internal/helpers"
	"github.com/goplan-app/goplan-server/internal/models"
)

// UploadFile is one incoming multipart file.
type UploadFile struct {
	Reader io.Reader
	Name   string
}

type UploadService struct {
	blob     *connect.BlobHandle
	userRepo models.UserRepo
	logger   *slog.Logger
}

func NewUploadService(blob *connect.BlobHandle, userRepo models.UserRepo, logger *slog.Logger) *UploadService {
	return &UploadService{
		blob:     blob,
		userRepo: userRepo,
		logger:   logger,
	}
}

// UploadAvatar replaces the user's avatar. The previous blob is deleted best
// effort: a failed delete is logged, not fatal.
func (us *UploadService) UploadAvatar(ctx context.Context, user *models.User, file UploadFile) (string, error) {
	cld, err := us.blob.Get()
	if err != nil {
		return "", apperrors.Server("blob storage is not configured")
	}

	if user.Avatar != "" {
		if publicID := helpers.PublicIDFromURL(user.Avatar); publicID != "" {
			if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
				us.logger.Warn("failed to delete previous avatar", "user_id", user.ID.Hex(), "error", err)
			}
		}
	}

	res, err := cld.Upload.Upload(ctx, file.Reader, uploader.UploadParams{
		PublicID: helpers.GenerateBlobName(0, file.Name),
		Folder:   helpers.AvatarFolder,
	})
	if err != nil {
		return "", apperrors.Server("failed to upload avatar")
	}

	if err := us.userRepo.SetAvatar(ctx, user.ID, res.SecureURL); err != nil {
		return "", apperrors.Server("failed to save avatar")
	}
	return res.SecureURL, nil
}

// UploadPhotos stores each file under a collision-resistant name and appends
// the resulting URLs to the user's photo list.
func (us *UploadService) UploadPhotos(ctx context.Context, user *models.User, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, apperrors.User(apperrors.KindInvalid, "no files provided")
	}

	cld, err := us.blob.Get()
	if err != nil {
		return nil, apperrors.Server("blob storage is not configured")
	}

	urls := make([]string, 0, len(files))
	for i, file := range files {
		res, err := cld.Upload.Upload(ctx, file.Reader, uploader.UploadParams{
			PublicID: helpers.GenerateBlobName(i, file.Name),
			Folder:   helpers.PhotosFolder,
		})
		if err != nil {
			return nil, apperrors.Server(fmt.Sprintf("failed to upload %s", file.Name))
		}
		urls = append(urls, res.SecureURL)
	}

	if err := us.userRepo.AddPhotos(ctx, user.ID, urls); err != nil {
		return nil, apperrors.Server("failed to save photos")
	}
	return urls, nil
}

// DeletePhoto removes the blob and strips the URL from the user's photo
// list.
func (us *UploadService) DeletePhoto(ctx context.Context, user *models.User, url string) error {
	owned := false
	for _, p := range user.Photos {
		if p == url {
			owned = true
			break
		}
	}
	if !owned {
		return apperrors.User(apperrors.KindNotFound, "photo not found")
	}

	cld, err := us.blob.Get()
	if err != nil {
		return apperrors.Server("blob storage is not configured")
	}

	publicID := helpers.PublicIDFromURL(url)
	if publicID == "" {
		return apperrors.User(apperrors.KindInvalid, "invalid photo url")
	}
	if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return apperrors.Server("failed to delete photo")
	}

	if err := us.userRepo.RemovePhoto(ctx, user.ID, url); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperrors.User(apperrors.KindNotFound, "user not found")
		}
		return apperrors.Server("failed to update photo list")
	}
	return nil
}
