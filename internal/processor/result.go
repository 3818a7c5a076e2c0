package processor

import (
	"os"
	"sync"

	"github.com/rezonia/facturx-fusion/internal/model"
)

// Result is a generated hybrid PDF on disk. Close removes it.
type Result struct {
	dir  string
	path string
	size int64

	closeOnce sync.Once
	closeErr  error
}

// Path returns the location of the generated PDF
func (r *Result) Path() string {
	return r.path
}

// Size returns the size of the generated PDF in bytes
func (r *Result) Size() int64 {
	return r.size
}

// Bytes reads the whole generated PDF
func (r *Result) Bytes() ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, model.NewFileSystemError("read", r.path, err)
	}
	return data, nil
}

// Open opens the generated PDF for streaming
func (r *Result) Open() (*os.File, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, model.NewFileSystemError("open", r.path, err)
	}
	return f, nil
}

// Close removes the workspace holding the generated PDF. It is safe to call
// more than once.
func (r *Result) Close() error {
	r.closeOnce.Do(func() {
		if err := os.RemoveAll(r.dir); err != nil {
			r.closeErr = model.NewFileSystemError("remove", r.dir, err)
		}
	})
	return r.closeErr
}
