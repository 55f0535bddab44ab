package imagestore

import "encoding/base64"

// IsGenuineEncodedBinary reports whether s is standard base64 whose decoded
// bytes are non-empty and re-encode to exactly s. The decoder ignores line
// breaks, so the round trip also rejects wrapped input.
func IsGenuineEncodedBinary(s string) bool {
	decoded, ok := decode(s)
	return ok && len(decoded) > 0
}

func decode(s string) ([]byte, bool) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	if base64.StdEncoding.EncodeToString(decoded) != s {
		return nil, false
	}
	return decoded, true
}
