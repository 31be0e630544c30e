package overlap

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrDataSource indicates the overlap database could not be opened or queried.
	ErrDataSource = errors.New("data source error")

	// ErrNoTracts indicates a resolution was requested for an empty tract set.
	ErrNoTracts = errors.New("no tracts given")
)

// DataSourceError records a failed operation against the overlap database.
type DataSourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s %s", ErrDataSource, e.Op, e.Path)
	}
	// A path error already names the operation and the file.
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return fmt.Sprintf("%s: %v", ErrDataSource, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrDataSource, e.Op, e.Path, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// Is reports ErrDataSource as a match so callers need not unwrap.
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }
