// Package channel abstracts the notification feeds between the viewport
// state and the selection pipeline, so producers hold a Sender and
// consumers a Receiver instead of sharing a raw chan.
package channel

// Receiver provides read access to a feed.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a feed.
type Sender[T any] interface {
	Send(T)
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}

// Buffered is a buffered feed. Sends block only when the buffer is full;
// the pipeline drains bursts latest-wins, so the buffer rarely fills.
type Buffered[T any] struct {
	ch chan T
}

// New creates a feed with the given buffer size.
func New[T any](size int) Channel[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

func (b *Buffered[T]) Send(v T) {
	b.ch <- v
}

func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len returns how many notifications are waiting.
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

func (b *Buffered[T]) Close() {
	close(b.ch)
}
