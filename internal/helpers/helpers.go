package helpers

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AvatarFolder = "avatars"
	PhotosFolder = "photos"
	PlansFolder  = "plans"
)

// GenerateBlobName builds a collision-resistant blob name from the upload
// timestamp, the file's index in the batch, a random suffix, and a sanitized
// version of the original filename.
func GenerateBlobName(index int, original string) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	base := strings.TrimSuffix(original, path.Ext(original))
	return fmt.Sprintf("%d_%d_%s_%s", time.Now().UnixMilli(), index, suffix, SanitizeFilename(base))
}

// SanitizeFilename strips everything but letters, digits, dashes,
// underscores, and dots.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		return "file"
	}
	return s
}

// PublicIDFromURL extracts the Cloudinary public id (folder/name, no
// extension, no version prefix) from a delivery URL. Returns "" if the URL
// does not look like a Cloudinary upload URL.
func PublicIDFromURL(rawURL string) string {
	const marker = "/upload/"
	i := strings.Index(rawURL, marker)
	if i < 0 {
		return ""
	}
	rest := rawURL[i+len(marker):]
	// Drop the version segment (v1234567890/...) when present.
	if parts := strings.SplitN(rest, "/", 2); len(parts) == 2 &&
		len(parts[0]) > 1 && parts[0][0] == 'v' && isDigits(parts[0][1:]) {
		rest = parts[1]
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// IsImageMime reports whether a multipart content type is an accepted image
// type for avatar and photo uploads.
func IsImageMime(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// StringTrim trims surrounding whitespace from a path or query parameter.
func StringTrim(s string) string {
	return strings.TrimSpace(s)
}
