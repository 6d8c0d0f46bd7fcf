package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/rmaalouf/melodeon_backend/utils"
)

// DiskMediaService stores media under the local uploads tree. Files are
// served back through the /uploads routes. Thumbnails are generated
// best-effort and never fail an upload.
type DiskMediaService struct {
	baseDir string
	baseURL string
}

func NewDiskMediaService(baseDir string) *DiskMediaService {
	return &DiskMediaService{
		baseDir: baseDir,
		baseURL: "/uploads",
	}
}

func (s *DiskMediaService) Upload(ctx context.Context, filePath, filename, kind string) (string, error) {
	subDir := kind + "s" // images, videos

	name := uuid.New().String() + strings.ToLower(filepath.Ext(utils.CleanFilename(filename)))
	dir := filepath.Join(s.baseDir, subDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	targetPath := filepath.Join(dir, name)
	if err := copyFile(filePath, targetPath); err != nil {
		return "", fmt.Errorf("failed to store file: %v", err)
	}

	if err := s.writeThumbnail(targetPath, name, kind); err != nil {
		log.Printf("Failed to generate thumbnail for %s: %v", name, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, subDir, name), nil
}

func (s *DiskMediaService) Delete(ctx context.Context, publicID, kind string) error {
	publicID = utils.CleanFilename(publicID)
	if strings.Trim(publicID, ".") == "" {
		return fmt.Errorf("invalid public id")
	}

	dir := filepath.Join(s.baseDir, kind+"s")
	matches, err := filepath.Glob(filepath.Join(dir, publicID+".*"))
	if err != nil {
		return err
	}
	// Files stored without an extension are not caught by the glob
	if _, err := os.Stat(filepath.Join(dir, publicID)); err == nil {
		matches = append(matches, filepath.Join(dir, publicID))
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return err
		}
	}

	// Drop the thumbnail too, if one was generated
	thumbPath := filepath.Join(s.baseDir, "thumbnails", publicID+".jpg")
	if _, err := os.Stat(thumbPath); err == nil {
		os.Remove(thumbPath)
	}

	return nil
}

// writeThumbnail renders a small JPEG preview next to the stored asset.
func (s *DiskMediaService) writeThumbnail(sourcePath, name, kind string) error {
	thumbDir := filepath.Join(s.baseDir, "thumbnails")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return err
	}
	thumbPath := filepath.Join(thumbDir, strings.TrimSuffix(name, filepath.Ext(name))+".jpg")

	switch kind {
	case utils.MediaKindImage:
		img, err := imaging.Open(sourcePath)
		if err != nil {
			return err
		}
		// Max width 320px, aspect ratio preserved
		resized := imaging.Resize(img, 320, 0, imaging.Lanczos)
		return imaging.Save(resized, thumbPath, imaging.JPEGQuality(85))
	case utils.MediaKindVideo:
		return ffmpeg.Input(sourcePath).
			Output(thumbPath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
			OverWriteOutput().
			Run()
	}
	return nil
}

func copyFile(sourcePath, targetPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(targetPath)
		return err
	}
	return dst.Close()
}
