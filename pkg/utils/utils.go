package utils

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Supported audio file extensions
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4p":  true,
	".aac":  true,
	".aif":  true,
	".aiff": true,
	".alac": true,
	".flac": true,
	".opus": true,
	".ogg":  true,
	".wav":  true,
}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// LocationToPath converts a library "Location" value (a percent-encoded
// file:// URL such as file:///Users/me/Music/A%20B.mp3) to a local path.
func LocationToPath(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("location cannot be empty")
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}

	path := u.Path
	if path == "" {
		return "", fmt.Errorf("location %q has no path", location)
	}
	// Windows exports look like file://localhost/C:/Music/...
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}
