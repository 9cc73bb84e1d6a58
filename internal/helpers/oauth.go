package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// OAuthProfile is the provider-verified identity handed to the auth service.
type OAuthProfile struct {
	ProviderID string
	Email      string
	Name       string
	Avatar     string
}

type googleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// VerifyGoogleIDToken validates a Google-issued ID token against Google's
// JWKS and checks the audience against our client id.
func VerifyGoogleIDToken(ctx context.Context, idToken, clientID string) (*OAuthProfile, error) {
	jwksCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	jwks, err := keyfunc.Get(googleJWKSURL, keyfunc.Options{Ctx: jwksCtx})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google JWKS: %w", err)
	}
	defer jwks.EndBackground()

	token, err := jwt.ParseWithClaims(idToken, &googleClaims{}, jwks.Keyfunc,
		jwt.WithAudience(clientID),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("google token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*googleClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid google token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("google token has no subject")
	}

	return &OAuthProfile{
		ProviderID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Avatar:     claims.Picture,
	}, nil
}

type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// VerifyFacebookToken resolves a Facebook access token to a profile via the
// Graph API. Facebook tokens are opaque, so the lookup itself is the proof
// of validity.
func VerifyFacebookToken(ctx context.Context, accessToken string) (*OAuthProfile, error) {
	reqURL := "https://graph.facebook.com/me?fields=id,name,email,picture&access_token=" +
		url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook rejected the token (status %d)", resp.StatusCode)
	}

	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode facebook profile: %w", err)
	}
	if profile.ID == "" {
		return nil, errors.New("facebook profile has no id")
	}

	return &OAuthProfile{
		ProviderID: profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		Avatar:     profile.Picture.Data.URL,
	}, nil
}
