// Package avatar ingests uploaded profile images: bound, decode, resize,
// then promote into permanent storage.
//
// The transient file created for an upload is owned by the Process call that
// created it and is removed on every failure path before the error is
// returned. The only file left behind by a successful call is the processed
// avatar in the permanent directory.
package avatar

import (
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/xid"

	"github.com/pwalczk/contactbook/internal/apperror"
)

// avatarSize is the fixed square dimension avatars are resized to.
const avatarSize = 250

// urlPrefix is the public path component stored in avatar URLs produced by
// this pipeline; StoredPath reverses it.
const urlPrefix = "avatars"

// Stored is the outcome of a successful Process call. Path is the absolute
// location of the promoted file so the caller can compensate (delete it) if
// the subsequent record update fails.
type Stored struct {
	URL  string
	Path string
}

// Pipeline processes avatar uploads.
type Pipeline struct {
	uploadDir string
	avatarDir string
	logger    *slog.Logger
}

// New creates a Pipeline and ensures both directories exist.
func New(uploadDir, avatarDir string, logger *slog.Logger) (*Pipeline, error) {
	for _, dir := range []string{uploadDir, avatarDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("avatar: creating directory %s: %w", dir, err)
		}
	}
	return &Pipeline{uploadDir: uploadDir, avatarDir: avatarDir, logger: logger}, nil
}

// Process runs the full ingestion for one upload:
//
//  1. spool the payload to a transient file in the upload directory
//  2. decode it as an image (failure → validation error)
//  3. resize to 250×250, overwriting the transient file
//  4. rename into the avatar directory under a collision-resistant name
//     derived from the account ID and the original filename
//
// The caller is responsible for bounding the reader's size before calling.
// On any error the transient file is gone by the time Process returns.
func (p *Pipeline) Process(accountID, originalName string, payload io.Reader) (*Stored, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, apperror.ValidationFailed("avatar",
			fmt.Sprintf("unsupported image type %q", ext))
	}

	tmp, err := os.CreateTemp(p.uploadDir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("avatar: creating transient file: %w", err)
	}
	tmpPath := tmp.Name()

	// Every exit after this point must release the transient file. cleanup
	// is disarmed only once the rename into permanent storage succeeds.
	cleanup := true
	defer func() {
		if cleanup {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				p.logger.Warn("failed to remove transient upload",
					slog.String("path", tmpPath),
					slog.String("error", err.Error()),
				)
			}
		}
	}()

	if _, err := io.Copy(tmp, payload); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("avatar: spooling upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("avatar: closing transient file: %w", err)
	}

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return nil, apperror.ValidationFailed("avatar", "file is not a decodable image")
	}

	resized := imaging.Resize(img, avatarSize, avatarSize, imaging.Lanczos)

	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("avatar: reopening transient file: %w", err)
	}
	if err := imaging.Encode(out, resized, format); err != nil {
		out.Close()
		return nil, fmt.Errorf("avatar: encoding resized image: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("avatar: flushing resized image: %w", err)
	}

	name := permanentName(accountID, originalName, ext)
	dest := filepath.Join(p.avatarDir, name)

	// Rename is atomic on the same filesystem: either the file appears at
	// dest in full, or it stays at tmpPath and the deferred cleanup runs.
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("avatar: promoting %s: %w", name, err)
	}
	cleanup = false

	return &Stored{
		URL:  path.Join(urlPrefix, name),
		Path: dest,
	}, nil
}

// Discard removes a promoted avatar file. Used to compensate when the
// account record update fails after the file was already moved.
func (p *Pipeline) Discard(stored *Stored) {
	if err := os.Remove(stored.Path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove promoted avatar",
			slog.String("path", stored.Path),
			slog.String("error", err.Error()),
		)
	}
}

// RemoveStored deletes the file behind a previously stored avatar URL.
// URLs not produced by this pipeline (e.g. gravatar defaults) are ignored.
func (p *Pipeline) RemoveStored(url string) {
	name, ok := strings.CutPrefix(url, urlPrefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return
	}
	if err := os.Remove(filepath.Join(p.avatarDir, name)); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove previous avatar",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// permanentName builds a collision-resistant filename from the account ID,
// a fresh xid and the (sanitised) original base name.
func permanentName(accountID, originalName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		base = "avatar"
	}
	return fmt.Sprintf("%s_%s_%s%s", accountID, xid.New().String(), base, ext)
}

// GravatarURL derives the default avatar for an email address, so every
// account has a usable avatar before any upload.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", md5.Sum([]byte(normalized)))
}
