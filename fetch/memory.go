package fetch

import (
	"context"
	"reflect"
	"time"
)

// Memory is a deterministic in-memory Client double. Tests register
// named variables up front with Set; Open/Join never actually block.
type Memory struct {
	vars map[string]any // varPath -> slice
}

// NewMemory constructs an empty in-memory fetcher.
func NewMemory() *Memory {
	return &Memory{vars: make(map[string]any)}
}

// Set registers a variable's full column. data must be a slice.
func (m *Memory) Set(varPath string, data any) {
	m.vars[varPath] = data
}

type memoryHandle struct {
	data    reflect.Value
	first   int64
	count   int64
	trimmed int64
}

func (h *memoryHandle) Size() int { return int(h.count - h.trimmed) }

func (h *memoryHandle) ElementBytes() int {
	return int(h.data.Type().Elem().Size())
}

func (h *memoryHandle) Type() reflect.Kind {
	return h.data.Type().Elem().Kind()
}

func (h *memoryHandle) At(i int) any {
	idx := h.first + h.trimmed + int64(i)
	return h.data.Index(int(idx)).Interface()
}

func (h *memoryHandle) Trim(first int64) {
	if first > h.trimmed {
		h.trimmed = first
	}
}

// Open implements Client. A missing variable is ErrResourceNotExist.
func (m *Memory) Open(ctx context.Context, varPath string, col int, firstRow, numRows int64) (Handle, error) {
	raw, ok := m.vars[varPath]
	if !ok {
		return nil, ErrResourceNotExist
	}

	v := reflect.ValueOf(raw)
	n := int64(v.Len())

	first := firstRow
	if first < 0 {
		first = 0
	}
	count := numRows
	if count == AllRows || count < 0 {
		count = n - first
	}
	if first+count > n {
		count = n - first
	}

	return &memoryHandle{data: v, first: first, count: count}, nil
}

// Join is a no-op for the in-memory double: the "read" already
// completed synchronously inside Open.
func (m *Memory) Join(ctx context.Context, h Handle, timeout time.Duration, throwOnError bool) error {
	return nil
}
