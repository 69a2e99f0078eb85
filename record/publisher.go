package record

import (
	"context"
	"errors"
	"time"
)

// PostStatus mirrors the source's tri-state publish result (§4.F):
// positive on success, StateTimeout on a transient full queue,
// negative/fatal otherwise.
type PostStatus int

const (
	// StateTimeout signals a transient full-queue condition; the
	// caller is expected to retry while its active flag holds.
	StateTimeout PostStatus = 0
	// StateOK signals a successful post.
	StateOK PostStatus = 1
)

// ErrFatal wraps an unrecoverable publish failure (negative codes in
// the source).
var ErrFatal = errors.New("record: fatal publish error")

// Publisher is the consumed interface a beam worker posts frames
// through (§4.F). PostCopy bounds queue depth by copying the frame in;
// PostRef transfers ownership of the frame to the publisher (the
// receiver is responsible for eventually releasing it — in Go terms,
// simply not retaining a reference the caller mutates afterward).
type Publisher interface {
	PostCopy(ctx context.Context, f Frame, timeout time.Duration) (PostStatus, error)
	PostRef(ctx context.Context, f Frame, timeout time.Duration) (PostStatus, error)
	Close() error
}

// PostWithRetry implements the worker-side retry loop described in
// §4.F/§5: loop with no sleep while active() is true and the publish
// keeps timing out, incrementing retries; stop and drop on fatal
// error or active()==false.
func PostWithRetry(ctx context.Context, pub Publisher, f Frame, timeout time.Duration, active func() bool, counters *Counters) error {
	for {
		status, err := pub.PostCopy(ctx, f, timeout)
		if err != nil {
			counters.Dropped++
			return err
		}
		switch status {
		case StateOK:
			counters.Sent++
			return nil
		case StateTimeout:
			counters.Retried++
			if !active() {
				counters.Dropped++
				return nil
			}
			continue
		default:
			counters.Dropped++
			return nil
		}
	}
}
