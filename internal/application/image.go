package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var imageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var errBadImage = errors.New("must be a base64 encoded png, jpeg, gif or webp data URI")

// decodeDataURI parses "data:<type>;base64,<payload>".
func decodeDataURI(s string) (contentType, ext string, data []byte, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return "", "", nil, errBadImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", nil, errBadImage
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", nil, errBadImage
	}
	contentType = strings.ToLower(contentType)
	if ext, ok = imageTypes[contentType]; !ok {
		return "", "", nil, errBadImage
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", "", nil, errBadImage
	}
	return contentType, ext, data, nil
}

// storeImage validates a data URI and uploads it. Without an image store
// the data URI itself is the stored reference.
func storeImage(ctx context.Context, images ImageStore, authorID int64, uri string) (string, error) {
	contentType, ext, data, err := decodeDataURI(uri)
	if err != nil {
		return "", fieldError("image", err.Error())
	}
	if images == nil {
		return strings.TrimSpace(uri), nil
	}
	objectPath := fmt.Sprintf("recipes/%d/%s.%s", authorID, uuid.NewString(), ext)
	url, err := images.Upload(ctx, objectPath, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}
