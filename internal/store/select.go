package store

import "strings"

// BaseURL resolves the effective remote base URL from the primary and
// fallback settings. The primary wins when both are set; blank after
// trimming means local mode.
func BaseURL(primary, fallback string) string {
	if s := strings.TrimSpace(primary); s != "" {
		return s
	}
	if s := strings.TrimSpace(fallback); s != "" {
		return s
	}
	return ""
}

// Select picks the backend once at startup: remote when a base URL is
// configured, the file-backed store otherwise.
func Select(baseURL, token, localPath string) NoteStore {
	if strings.TrimSpace(baseURL) != "" {
		return NewRemote(baseURL, token)
	}
	return NewLocal(localPath)
}
