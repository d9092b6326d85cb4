// Package assets stores uploaded binary files (avatars, covers, logos) on
// disk under the configured media directory.
package assets

import (
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
)

// Asset kinds, used as subdirectories of the media root.
const (
	KindAvatar = "avatars"
	KindCover  = "covers"
	KindLogo   = "logos"
)

type Store struct {
	root string
}

// NewStore creates the media root and its per-kind subdirectories.
func NewStore(root string) (*Store, error) {
	for _, kind := range []string{KindAvatar, KindCover, KindLogo} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create media directory: %s", kind)
		}
	}
	return &Store{root: root}, nil
}

// Save writes an uploaded file under a generated name and returns its path
// relative to the media root. The content must be an image; anything else is
// rejected as a validation error.
func (s *Store) Save(kind string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if !isImage(mtype) {
		return "", errcodes.ValidationError("Uploaded file must be an image")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errors.WithStack(err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.WithStack(err)
	}
	relPath := filepath.Join(kind, id.String()+mtype.Extension())

	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Don't leave a partial file behind.
		_ = os.Remove(filepath.Join(s.root, relPath))
		return "", errors.WithStack(err)
	}

	return relPath, nil
}

// Remove deletes a stored asset. Removing a missing file is not an error, so
// delete endpoints stay idempotent.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.WithStack(err)
	}
	return nil
}

// RemoveRef removes the asset referenced by a nullable path column.
func (s *Store) RemoveRef(relPath *string) error {
	if relPath == nil {
		return nil
	}
	return s.Remove(*relPath)
}

// FilePath returns the absolute path of a stored asset.
func (s *Store) FilePath(relPath string) string {
	return filepath.Join(s.root, relPath)
}

func isImage(mtype *mimetype.MIME) bool {
	for _, m := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
		if mtype.Is(m) {
			return true
		}
	}
	return false
}
