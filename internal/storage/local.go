package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ironsheep/thumbnailer/internal/location"
	"github.com/ironsheep/thumbnailer/internal/logging"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var errStopWalk = errors.New("stop walk")

// LocalBackend stores blobs as files.
type LocalBackend struct {
	fs     afero.Fs
	logger logging.Interface
}

// NewLocalBackend wraps fs. Pass afero.NewOsFs() for the real filesystem.
func NewLocalBackend(fs afero.Fs, logger logging.Interface) *LocalBackend {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LocalBackend{fs: fs, logger: logger.WithField("backend", "local")}
}

// classifyLocal maps filesystem errors onto the package taxonomy.
func classifyLocal(op string, loc location.Location, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(op, loc.String(), ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return newError(op, loc.String(), ErrForbidden)
	default:
		return newError(op, loc.String(), err)
	}
}

func (b *LocalBackend) Exists(_ context.Context, loc location.Location) (bool, error) {
	info, err := b.fs.Stat(loc.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, classifyLocal("exists", loc, err)
	}
	return info.Mode().IsRegular(), nil
}

func (b *LocalBackend) Read(_ context.Context, loc location.Location, limit int64) ([]byte, error) {
	f, err := b.fs.Open(loc.Path())
	if err != nil {
		b.logger.WithField("uri", loc.String()).WithError(err).Error("failed to read")
		return nil, classifyLocal("read", loc, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyLocal("read", loc, err)
	}
	return data, nil
}

func (b *LocalBackend) Write(_ context.Context, loc location.Location, data []byte) (bool, error) {
	path := loc.Path()
	log := b.logger.WithField("uri", loc.String())

	if err := b.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, newError("write", loc.String(), ErrForbidden)
		}
		log.WithError(err).Error("failed writing")
		return false, nil
	}

	f, err := b.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, newError("write", loc.String(), ErrForbidden)
		}
		log.WithError(err).Error("failed writing")
		return false, nil
	}

	n, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil || n != len(data) {
		log.WithError(errors.Join(werr, cerr)).Errorf("failed writing: wrote %d of %d bytes", n, len(data))
		return false, nil
	}
	return true, nil
}

func (b *LocalBackend) Remove(_ context.Context, loc location.Location) (bool, error) {
	if err := b.fs.Remove(loc.Path()); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, newError("remove", loc.String(), ErrForbidden)
		}
		b.logger.WithField("uri", loc.String()).WithError(err).Error("failed removing")
		return false, nil
	}
	return true, nil
}

// List walks the deepest directory fully named by the prefix and returns the
// regular files whose path starts with it, in lexical order.
func (b *LocalBackend) List(_ context.Context, prefix location.Location, limit int) ([]location.Location, error) {
	want := prefix.Path()
	root := filepath.Dir(want)
	match := filepath.Clean(want)
	if strings.HasSuffix(want, "/") {
		root = match
		if match != "/" {
			match += "/"
		}
	}

	var out []location.Location
	err := afero.Walk(b.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.Mode().IsRegular() || !strings.HasPrefix(path, match) {
			return nil
		}
		loc, lerr := location.Local(path)
		if lerr != nil {
			return lerr
		}
		out = append(out, loc)
		if limit > 0 && len(out) >= limit {
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, classifyLocal("list", prefix, err)
	}
	return out, nil
}
