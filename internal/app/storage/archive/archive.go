package archive

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"media2text/internal/app/errors"
)

// Archiver stores processed source files. List returns the base names
// already archived, which the pipeline uses to skip repeat work.
type Archiver interface {
	List(ctx context.Context) (map[string]bool, error)
	Archive(ctx context.Context, srcPath string) error
}

// FSArchiver moves files into a local directory under their original name.
type FSArchiver struct {
	dir    string
	logger *zap.Logger
}

var _ Archiver = (*FSArchiver)(nil)

func NewFSArchiver(dir string, logger *zap.Logger) *FSArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSArchiver{dir: dir, logger: logger}
}

func (a *FSArchiver) List(ctx context.Context) (map[string]bool, error) {
	names := make(map[string]bool)
	entries, err := os.ReadDir(a.dir)
	if os.IsNotExist(err) {
		return names, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read archive directory %s", a.dir)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names[entry.Name()] = true
		}
	}
	return names, nil
}

func (a *FSArchiver) Archive(ctx context.Context, srcPath string) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create archive directory %s", a.dir)
	}
	dst := filepath.Join(a.dir, filepath.Base(srcPath))

	err := os.Rename(srcPath, dst)
	if err == nil {
		a.logger.Debug("archived", zap.String("file", srcPath), zap.String("destination", dst))
		return nil
	}
	if os.IsNotExist(err) {
		return errors.NotFound("source file", srcPath)
	}

	var linkErr *os.LinkError
	if !stderrors.As(err, &linkErr) || !stderrors.Is(linkErr.Err, syscall.EXDEV) {
		return errors.Wrapf(err, "move %s to %s", srcPath, dst)
	}
	if err := copyFile(srcPath, dst); err != nil {
		return err
	}
	if err := os.Remove(srcPath); err != nil {
		return errors.Wrapf(err, "remove %s after copy", srcPath)
	}
	a.logger.Debug("archived across devices", zap.String("file", srcPath), zap.String("destination", dst))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	tmp := dst + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "copy %s", src)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, dst), "finalize archive copy")
}
