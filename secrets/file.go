package secrets

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MissingFileError is returned when the template file does not exist.
type MissingFileError struct {
	Filename string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("Could not find secret template file with name: '%s'", e.Filename)
}

// Renderer renders secret references in template files.
type Renderer struct {
	Fetcher Fetcher
	Env     EnvFunc

	// DryRun writes the rendered text to Out instead of the file.
	DryRun bool
	Out    io.Writer
}

type Result struct {
	Filename      string
	Substitutions []Substitution
	Written       bool
}

// RenderFile replaces the references in filename with their secret values
// and writes the file back in place. A file without references is not
// rewritten. Nothing is written when any fetch fails.
func (r *Renderer) RenderFile(ctx context.Context, filename string) (*Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Filename: filename}
		}
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}

	rendered, subs, err := ExecuteTemplate(ctx, string(data), r.Fetcher, r.Env)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Filename:      filename,
		Substitutions: subs,
	}

	if r.DryRun {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.WriteString(out, rendered); err != nil {
			return nil, errors.Wrap(err, "failed to write rendered template")
		}
		return res, nil
	}

	if len(subs) == 0 {
		log.WithField("file", filename).Debug("no secret references found")
		return res, nil
	}

	if err := replaceFile(filename, []byte(rendered)); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", filename)
	}
	res.Written = true
	log.WithFields(log.Fields{"file": filename, "secrets": len(subs)}).Info("rendered secrets")
	return res, nil
}

// replaceFile swaps in the new content through a temporary file in the same
// directory so the template is never left half written. The original mode
// is kept and symlinks are written through.
func replaceFile(filename string, data []byte) error {
	target, err := filepath.EvalSymlinks(filename)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
