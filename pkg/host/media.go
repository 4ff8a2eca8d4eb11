package host

import (
	"mime"
	"strings"
)

// MediaKindOf maps a MIME type onto the preview player able to show it. The
// second result is false for types without a player.
func MediaKindOf(mimeType string) (MediaKind, bool) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	switch mediaType {
	case "audio/mpeg", "audio/ogg", "audio/wav", "audio/x-wav":
		return MediaAudio, true
	case "image/png", "image/jpeg":
		return MediaImage, true
	case "video/mp4":
		return MediaVideo, true
	default:
		return "", false
	}
}
