package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxSegmentBytes is the largest accepted audio segment.
const MaxSegmentBytes = 25 * 1024 * 1024

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format. Supported: webm, ogg, wav, mp3, m4a, flac")
	ErrTooLarge          = errors.New("file size exceeds 25MB limit")
)

var allowedExts = map[string]bool{
	".webm": true,
	".ogg":  true,
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
}

// AudioStore writes uploaded audio segments to disk until the speech-to-text
// stream has consumed them.
type AudioStore struct {
	dir string
}

func NewAudioStore(dir string) *AudioStore {
	if dir == "" {
		dir = "uploads"
	}
	return &AudioStore{dir: dir}
}

// Validate checks the segment's extension and size.
func Validate(file *multipart.FileHeader) error {
	if !allowedExts[strings.ToLower(filepath.Ext(file.Filename))] {
		return ErrUnsupportedFormat
	}
	if file.Size > MaxSegmentBytes {
		return ErrTooLarge
	}
	return nil
}

// SaveSegment validates and stores one segment for a session and returns its
// path.
func (s *AudioStore) SaveSegment(sessionID string, file *multipart.FileHeader) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}

	dir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	dst := filepath.Join(dir, "seg_"+uuid.New().String()+ext)
	if err := saveMultipartFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return dst, nil
}

/* helper */
func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(src)
	return err
}
