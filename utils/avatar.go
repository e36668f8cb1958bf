// forum/utils/avatar.go
package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var avatarTypes = map[string]string{
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateAvatar checks uploaded bytes by magic-byte MIME detection and a
// decode of the image header. It returns the detected content type.
func ValidateAvatar(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("uploaded file is empty")
	}
	contentType := http.DetectContentType(data)
	if _, ok := avatarTypes[contentType]; !ok {
		return "", fmt.Errorf("unsupported file type %s, only JPG, PNG, GIF and WebP are allowed", contentType)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}
	return contentType, nil
}

// AvatarExt returns the file extension for a detected avatar content type.
func AvatarExt(contentType string) string {
	return avatarTypes[contentType]
}

// AvatarThumb renders a small JPEG thumbnail fitted inside width x height,
// preserving aspect ratio and EXIF orientation.
func AvatarThumb(data []byte, width, height int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for thumbnail: %w", err)
	}
	thumb := imaging.Fit(img, width, height, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbName derives the thumbnail filename stored next to an avatar.
func ThumbName(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i] + "_thumb.jpeg"
		}
	}
	return filename + "_thumb.jpeg"
}
