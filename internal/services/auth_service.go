package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/helpers"
	"github.com/goplan-app/goplan-server/internal/models"
)

type AuthService struct {
	userRepo  models.UserRepo
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(userRepo models.UserRepo, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// Register creates a local-credential account. The password is bcrypt-hashed
// before it reaches storage.
func (as *AuthService) Register(ctx context.Context, email, password, name string) (string, *models.User, error) {
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return "", nil, &apperrors.Error{
			Domain:  apperrors.DomainAuth,
			Kind:    apperrors.KindInvalid,
			Message: "missing required fields",
			Fields:  missing,
		}
	}
	if err := models.Validate.Var(email, "email"); err != nil {
		return "", nil, &apperrors.Error{
			Domain:  apperrors.DomainAuth,
			Kind:    apperrors.KindInvalid,
			Message: "invalid email format",
			Fields:  []string{"email"},
		}
	}
	if len(password) < 6 {
		return "", nil, &apperrors.Error{
			Domain:  apperrors.DomainAuth,
			Kind:    apperrors.KindInvalid,
			Message: "password must be at least 6 characters",
			Fields:  []string{"password"},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, apperrors.Server("failed to hash password")
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Settings: models.DefaultUserSettings(),
	}

	created, err := as.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return "", nil, apperrors.Auth(apperrors.KindDuplicate, "email is already registered")
		}
		return "", nil, apperrors.Server("failed to create user")
	}

	token, err := helpers.SignToken(as.jwtSecret, created.ID.Hex(), as.jwtTTL)
	if err != nil {
		return "", nil, apperrors.Server("failed to issue token")
	}
	return token, created, nil
}

// Login verifies local credentials. Unknown email and wrong password both
// yield the same generic error so accounts cannot be enumerated.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	invalid := apperrors.Auth(apperrors.KindUnauthenticated, "invalid credentials")

	user, err := as.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, invalid
		}
		return "", nil, apperrors.Server("failed to look up user")
	}

	// OAuth-only accounts carry no password hash.
	if user.Password == "" {
		return "", nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, invalid
	}

	token, err := helpers.SignToken(as.jwtSecret, user.ID.Hex(), as.jwtTTL)
	if err != nil {
		return "", nil, apperrors.Server("failed to issue token")
	}
	return token, user, nil
}

// OAuthLogin exchanges a provider-verified profile for a bearer token. The
// user is matched by provider id, linked by email when a local account
// already exists, or created fresh.
func (as *AuthService) OAuthLogin(ctx context.Context, provider string, profile *helpers.OAuthProfile) (string, *models.User, error) {
	user, err := as.userRepo.GetUserByProvider(ctx, provider, profile.ProviderID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", nil, apperrors.Server("failed to look up user")
	}

	if user == nil {
		user, err = as.createOAuthUser(ctx, provider, profile)
		if err != nil {
			return "", nil, err
		}
	}

	token, err := helpers.SignToken(as.jwtSecret, user.ID.Hex(), as.jwtTTL)
	if err != nil {
		return "", nil, apperrors.Server("failed to issue token")
	}
	return token, user, nil
}

func (as *AuthService) createOAuthUser(ctx context.Context, provider string, profile *helpers.OAuthProfile) (*models.User, error) {
	newUser := &models.User{
		Email:    profile.Email,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		Settings: models.DefaultUserSettings(),
	}
	providerField := "google_id"
	switch provider {
	case "google":
		newUser.GoogleID = profile.ProviderID
	case "facebook":
		newUser.FacebookID = profile.ProviderID
		providerField = "facebook_id"
	default:
		return nil, apperrors.Auth(apperrors.KindInvalid, "unsupported oauth provider")
	}

	created, err := as.userRepo.CreateUser(ctx, newUser)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, models.ErrDuplicate) {
		return nil, apperrors.Server("failed to create user")
	}

	// The email already belongs to a local account: link the provider id
	// instead of failing the login.
	existing, err := as.userRepo.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, apperrors.Server("failed to link oauth account")
	}
	linked, err := as.userRepo.UpdateProfile(ctx, existing.ID, map[string]interface{}{
		providerField: profile.ProviderID,
	})
	if err != nil {
		return nil, apperrors.Server("failed to link oauth account")
	}
	return linked, nil
}

// Authenticate resolves a bearer token to a live user record.
func (as *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := helpers.ValidateToken(as.jwtSecret, token)
	if err != nil {
		return nil, apperrors.Auth(apperrors.KindUnauthenticated, "invalid or expired token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperrors.Auth(apperrors.KindUnauthenticated, "invalid token subject")
	}

	user, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.Auth(apperrors.KindUnauthenticated, "user no longer exists")
		}
		return nil, apperrors.Server("failed to look up user")
	}
	return user, nil
}
