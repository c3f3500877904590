package project

import (
	"os"

	"github.com/spf13/afero"
)

// Documents loads the opaque text blobs the renderer consumes.
type Documents struct {
	fs afero.Fs
}

// NewDocuments creates a Documents reader over fs.
func NewDocuments(fs afero.Fs) *Documents {
	return &Documents{fs: fs}
}

// Task returns the active task document text. ok is false when epic or task
// is empty or the document does not exist.
func (d *Documents) Task(root, epic, task string) (string, bool, error) {
	if epic == "" || task == "" {
		return "", false, nil
	}
	return d.read(TaskPath(root, epic, task))
}

// Progress returns the progress document text, if present.
func (d *Documents) Progress(root string) (string, bool, error) {
	return d.read(ProgressPath(root))
}

func (d *Documents) read(path string) (string, bool, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}
