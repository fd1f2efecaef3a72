package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeContent decodes a content payload as returned by the provider's
// contents endpoints. Base64 content is wrapped with newlines, which are
// stripped before decoding. Failures wrap ErrDecode.
func DecodeContent(content, encoding string) (string, error) {
	switch encoding {
	case "base64", "":
		stripped := strings.NewReplacer("\n", "", "\r", "").Replace(content)
		data, err := base64.StdEncoding.DecodeString(stripped)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return string(data), nil
	case "utf-8", "none":
		return content, nil
	default:
		return "", fmt.Errorf("%w: unsupported encoding %q", ErrDecode, encoding)
	}
}
