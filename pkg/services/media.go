package services

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"hugo-directus/pkg/directus"
)

// AssetPredicate decides whether a field value references an asset.
type AssetPredicate func(value string) bool

// IsAssetReference matches the canonical 36 character UUID form Directus
// uses for file ids. Any string with that shape is treated as an asset,
// whatever the field schema says.
func IsAssetReference(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// FetchAsset downloads an asset into dir and returns the file name it was
// saved under. An access denied error is returned untouched so callers can
// treat it as a soft skip.
func FetchAsset(ctx context.Context, backend Backend, assetID, dir string) (string, error) {
	asset, err := backend.Asset(ctx, assetID)
	if err != nil {
		return "", err
	}
	defer asset.Body.Close()

	name := assetFilename(assetID, asset)
	if err := writeStreamAtomic(filepath.Join(dir, name), asset.Body, 0644); err != nil {
		return "", err
	}
	return name, nil
}

// assetFilename prefers the name suggested by Content-Disposition and falls
// back to the id plus an extension guessed from Content-Type.
func assetFilename(assetID string, asset *directus.Asset) string {
	if asset.Disposition != "" {
		if _, params, err := mime.ParseMediaType(asset.Disposition); err == nil {
			if name := params["filename"]; SafeJoin("", name) != "" {
				return name
			}
		}
	}
	return assetID + extensionFor(asset.ContentType)
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	if m := mimetype.Lookup(mediaType); m != nil {
		return m.Extension()
	}
	return ""
}
