package record

import (
	"context"
	"sync"
	"time"
)

// ChannelPublisher is the "message queue" Publisher backend: a
// thread-safe bounded channel, matching §5's "The output queue is
// itself thread-safe" and §4.F's timeout/STATE_TIMEOUT contract.
type ChannelPublisher struct {
	frames chan Frame

	mu     sync.Mutex
	closed bool
}

// NewChannelPublisher constructs a bounded-depth channel queue. depth
// corresponds to the "output queue depth" referenced in §8 scenario 6.
func NewChannelPublisher(depth int) *ChannelPublisher {
	return &ChannelPublisher{frames: make(chan Frame, depth)}
}

// Frames exposes the receive side for the downstream consumer.
func (p *ChannelPublisher) Frames() <-chan Frame { return p.frames }

func (p *ChannelPublisher) post(ctx context.Context, f Frame, timeout time.Duration) (PostStatus, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return PostStatus(-1), ErrFatal
	}
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p.frames <- f:
		return StateOK, nil
	case <-timer.C:
		return StateTimeout, nil
	case <-ctx.Done():
		return PostStatus(-1), ctx.Err()
	}
}

// PostCopy enqueues a copy of f. Frame already carries value-typed
// payloads (Go has no raw owning-pointer distinction at this layer),
// so PostCopy and PostRef share an implementation; the distinction is
// preserved in the interface to keep the §4.F contract visible at call
// sites.
func (p *ChannelPublisher) PostCopy(ctx context.Context, f Frame, timeout time.Duration) (PostStatus, error) {
	return p.post(ctx, f, timeout)
}

// PostRef enqueues f by reference; the receiver becomes the sole
// owner once the send succeeds.
func (p *ChannelPublisher) PostRef(ctx context.Context, f Frame, timeout time.Duration) (PostStatus, error) {
	return p.post(ctx, f, timeout)
}

// Close marks the queue closed and closes the underlying channel.
// Safe to call once the last worker has posted its terminator frame.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.frames)
	return nil
}
