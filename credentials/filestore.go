package credentials

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// fileFormat is what actually lands on disk. Exactly one of Plain or Sealed
// is populated, depending on whether the store was built with a passphrase.
type fileFormat struct {
	Plain  *TokenPair `yaml:"tokens,omitempty"`
	Sealed *sealedBox `yaml:"sealed,omitempty"`
}

// FileStore keeps the token pair in a yaml file with owner-only permissions.
// Writes are atomic: a temp file in the same directory is renamed over the
// target.
type FileStore struct {
	path       string
	passphrase string
}

var _ Store = (*FileStore)(nil)

// FileStoreOption modifies a FileStore during construction.
type FileStoreOption func(*FileStore)

// WithPassphrase seals the pair at rest. Loading with a different passphrase
// fails with ErrUnreadable.
func WithPassphrase(passphrase string) FileStoreOption {
	return func(fs *FileStore) {
		fs.passphrase = passphrase
	}
}

// NewFileStore creates a FileStore at path. An empty path selects the
// default location under the user's config directory.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, errors.Wrap(err, "[NewFileStore] resolve default path")
		}
		path = p
	}
	fs := &FileStore{path: path}
	for _, opt := range options {
		opt(fs)
	}
	return fs, nil
}

// DefaultPath is $XDG_CONFIG_HOME/shopfront/credentials.yaml (or the OS
// equivalent via os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shopfront", "credentials.yaml"), nil
}

// Path returns the file location backing this store.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load() (*TokenPair, error) {
	buf, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "at %s", fs.path)
		}
		return nil, errors.Wrap(err, "[FileStore.Load]")
	}

	var f fileFormat
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, errors.Wrapf(ErrUnreadable, "%s is not valid yaml: %s", fs.path, err)
	}

	switch {
	case f.Sealed != nil:
		if fs.passphrase == "" {
			return nil, errors.Wrapf(ErrUnreadable, "%s is sealed but no passphrase is configured", fs.path)
		}
		pair, err := f.Sealed.open(fs.passphrase)
		if err != nil {
			return nil, errors.Wrapf(ErrUnreadable, "cannot unseal %s: %s", fs.path, err)
		}
		return pair, nil
	case f.Plain != nil:
		return f.Plain, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "at %s", fs.path)
}

func (fs *FileStore) Save(pair *TokenPair) error {
	var f fileFormat
	if fs.passphrase != "" {
		box, err := seal(pair, fs.passphrase)
		if err != nil {
			return errors.Wrap(err, "[FileStore.Save] seal")
		}
		f.Sealed = box
	} else {
		f.Plain = pair
	}

	buf, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] marshal")
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, os.FileMode(0700)); err != nil {
		return errors.Wrap(err, "[FileStore.Save] mkdir")
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.yaml")
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(os.FileMode(0600)); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.Save] chmod")
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.Save] write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore.Save] close")
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.Save] rename into place")
	}
	return nil
}

func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear]")
	}
	return nil
}
