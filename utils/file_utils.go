package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MediaKindImage routes an upload to image hosting
	MediaKindImage = "image"
	// MediaKindVideo routes an upload to video hosting
	MediaKindVideo = "video"
)

var (
	// Allowed image extensions
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	// Allowed video extensions
	allowedVideoExts = map[string]bool{
		".mp4":  true,
		".mov":  true,
		".avi":  true,
		".webm": true,
	}

	filenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// CleanFilename removes any potentially dangerous characters from the filename
func CleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(filename)
	return filenameChars.ReplaceAllString(filename, "")
}

// MediaKind derives the resource type of an uploaded file from its declared
// MIME type, falling back to the file extension.
func MediaKind(file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaKindImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return MediaKindVideo, nil
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch {
	case allowedImageExts[ext]:
		return MediaKindImage, nil
	case allowedVideoExts[ext]:
		return MediaKindVideo, nil
	}

	return "", fmt.Errorf("unsupported media type for file %q", file.Filename)
}

// SpoolFormFile copies an uploaded form file to a temporary file on disk and
// returns its path together with a cleanup function. The caller must defer
// cleanup so the temporary file is removed on every exit path.
func SpoolFormFile(file *multipart.FileHeader) (string, func(), error) {
	src, err := file.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(CleanFilename(file.Filename)))
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return tmp.Name(), cleanup, nil
}
