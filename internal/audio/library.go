package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced audio file does not exist.
	ErrNotFound = errors.New("audio: not found")
	// ErrInvalidName is returned for empty or path-escaping file names.
	ErrInvalidName = errors.New("audio: invalid file name")
	// ErrUnsupportedFormat is returned for files outside the allowed formats.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	// ErrAlreadyExists is returned when a rename would clobber another file.
	ErrAlreadyExists = errors.New("audio: name already in use")
)

// allowedExtensions lists the playable formats the alarm player understands.
var allowedExtensions = map[string]struct{}{
	".mp3": {},
	".wav": {},
}

// Asset describes one audio clip in the library. Ref is the file name alarms
// reference; Name is the display name without the extension.
type Asset struct {
	Name string `json:"nombre"`
	Ref  string `json:"ruta"`
}

// Library is a directory of audio clips. It backs the read-only asset lookup
// the alarm service validates against, plus the upload, rename and delete
// operations of the audio management API.
type Library struct {
	dir string
}

// NewLibrary creates the library rooted at dir, creating the directory when
// it does not exist yet.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &Library{dir: dir}, nil
}

// List enumerates the playable clips in the library, sorted by name.
func (l *Library) List(ctx context.Context) ([]Asset, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	assets := make([]Asset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		assets = append(assets, Asset{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Ref:  name,
		})
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// Exists reports whether a clip with the given reference is present. It is
// the lookup the alarm service validates audio references against.
func (l *Library) Exists(ctx context.Context, ref string) (bool, error) {
	name, err := sanitizeName(ref)
	if err != nil {
		return false, nil
	}
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return false, nil
	}

	info, err := os.Stat(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat audio file: %w", err)
	}
	return !info.IsDir(), nil
}

// Save stores an uploaded clip under the sanitized file name and returns the
// resulting asset.
func (l *Library) Save(ctx context.Context, filename string, r io.Reader) (Asset, error) {
	name, err := sanitizeName(filename)
	if err != nil {
		return Asset{}, err
	}
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}

	file, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return Asset{}, fmt.Errorf("failed to create audio file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return Asset{}, fmt.Errorf("failed to write audio file: %w", err)
	}

	return Asset{Name: strings.TrimSuffix(name, filepath.Ext(name)), Ref: name}, nil
}

// Rename gives an existing clip a new display name, keeping its extension.
// Alarms referencing the old name are not rewritten; reference integrity is
// the caller's policy.
func (l *Library) Rename(ctx context.Context, ref, newName string) (Asset, error) {
	oldName, err := sanitizeName(ref)
	if err != nil {
		return Asset{}, err
	}
	base, err := sanitizeName(newName)
	if err != nil {
		return Asset{}, err
	}

	target := base + filepath.Ext(oldName)
	oldPath := filepath.Join(l.dir, oldName)
	newPath := filepath.Join(l.dir, target)

	if _, err := os.Stat(oldPath); errors.Is(err, os.ErrNotExist) {
		return Asset{}, ErrNotFound
	}
	if _, err := os.Stat(newPath); err == nil {
		return Asset{}, ErrAlreadyExists
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return Asset{}, fmt.Errorf("failed to rename audio file: %w", err)
	}

	return Asset{Name: base, Ref: target}, nil
}

// Delete removes a clip from the library.
func (l *Library) Delete(ctx context.Context, ref string) error {
	name, err := sanitizeName(ref)
	if err != nil {
		return err
	}

	path := filepath.Join(l.dir, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete audio file: %w", err)
	}
	return nil
}

// Path resolves a clip reference to its absolute path, for serving the file.
func (l *Library) Path(ref string) (string, error) {
	name, err := sanitizeName(ref)
	if err != nil {
		return "", err
	}
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	return path, nil
}

// sanitizeName reduces a user-supplied name to a bare file name, rejecting
// anything that could escape the library directory.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
