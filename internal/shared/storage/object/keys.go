package object

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var ErrInvalidFileName = errors.New("invalid file name")

// NewUserKey builds "<hashed user>/<random>_<sanitized name>".
func NewUserKey(userID, fileName string) (string, error) {
	name, err := SafeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(UserPrefix(userID), randomID()+"_"+name), nil
}

// UserPrefix is the hex SHA-256 of the user id, so provider ids like
// "google:123" never appear in object paths.
func UserPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// SafeFileName flattens path separators and rejects traversal.
func SafeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name), nil
}

// ThumbnailKey derives the thumbnail location for a stored resume.
func ThumbnailKey(storageKey string) string {
	return storageKey + ".thumb.png"
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
