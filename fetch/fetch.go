// Package fetch defines the chunked-variable fetcher contract
// consumed by beam workers (spec §4.A, component A). The real
// implementation is an HDF5-over-HTTP column reader that lives
// outside this repository's scope; this package only pins down the
// interface and ships an in-memory double (Memory) used by tests and
// as the placeholder client in cmd/subsetter. The process-start
// auxiliary-resource loaders (CSV tables, rasters) read their files
// directly and do not go through this package.
package fetch

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/samber/lo"
)

// Sentinels for the col/num_rows parameters, per spec §4.A.
const (
	AllCols = -1
	AllRows = -1
)

// Failure modes named in spec §4.A/§7.
var (
	ErrTimeout           = errors.New("fetch: join timed out")
	ErrResourceNotExist  = errors.New("fetch: resource does not exist")
	ErrDecode            = errors.New("fetch: decode error")
)

// Handle is the joinable result of an Open call. Once Join succeeds,
// a Handle exposes its typed element count, byte width, element type
// tag, and row-major indexed access, per spec §4.A.
type Handle interface {
	// Size is the number of elements available (post-join).
	Size() int
	// ElementBytes is the per-element byte width.
	ElementBytes() int
	// Type is the Go reflect.Kind of the decoded element.
	Type() reflect.Kind
	// At returns the element at row-major index i. Callers type-assert
	// to the concrete type implied by Type().
	At(i int) any
	// Trim drops every row before `first`, so a joined handle can be
	// narrowed in place to a region.Window without copying (spec
	// §4.B: "trimming of the shared views is requested via a trim(first)
	// operation").
	Trim(first int64)
}

// Client is the consumed chunked-variable fetcher contract.
type Client interface {
	// Open asynchronously begins retrieving num_rows rows of col from
	// var_path starting at first_row. col may be AllCols; num_rows may
	// be AllRows. Open never blocks past kicking off the read.
	Open(ctx context.Context, varPath string, col int, firstRow, numRows int64) (Handle, error)

	// Join blocks up to timeout for the handle to complete. Multiple
	// handles may be opened before any is joined (pipelining); the
	// beam worker relies on this to overlap reads.
	Join(ctx context.Context, h Handle, timeout time.Duration, throwOnError bool) error
}

// OpenAll is a convenience used throughout the beam workers: it opens
// every named variable against the same (first_row, num_rows) window
// before joining any of them, preserving the pipelined-open pattern
// spec §9 insists on retaining ("do not collapse to sequential
// opens"). varPaths is deduped first since a worker's segment and
// global variable lists sometimes name the same path twice (e.g. a
// geolocation variable reused across two logical groups).
func OpenAll(ctx context.Context, c Client, varPaths []string, firstRow, numRows int64) (map[string]Handle, error) {
	varPaths = lo.Uniq(varPaths)
	handles := make(map[string]Handle, len(varPaths))
	for _, vp := range varPaths {
		h, err := c.Open(ctx, vp, AllCols, firstRow, numRows)
		if err != nil {
			return nil, err
		}
		handles[vp] = h
	}
	return handles, nil
}

// JoinAll joins every handle opened by OpenAll, each bounded by
// timeout. It joins in map order (undefined, but each join is
// independent so ordering doesn't affect correctness) and returns the
// first error encountered, having still attempted every join so
// partial successes are visible to the caller via handles.
func JoinAll(ctx context.Context, c Client, handles map[string]Handle, timeout time.Duration) error {
	var firstErr error
	for _, h := range handles {
		if err := c.Join(ctx, h, timeout, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
