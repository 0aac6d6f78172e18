package engine

import (
	"errors"
	"sync/atomic"
)

// ErrMessageBoxOverflow reports that a kernel reserved a message slot past a
// box's preallocated capacity. The run cannot continue: the superstep's
// outbound messages are incomplete.
var ErrMessageBoxOverflow = errors.New("message box overflow")

// Msg pairs a payload with the local index of its receiver on the
// destination partition.
type Msg[M any] struct {
	Receiver uint32
	Value    M
}

// MessageBox is a fixed-capacity double-buffered message queue. The front
// buffer holds the messages readable this superstep; peer copies land in the
// back buffer and become readable only after SwapBuffers. Capacity is fixed
// at construction; overflow latches a sticky flag checked by the driver at
// the end of the step.
type MessageBox[M any] struct {
	front    []Msg[M]
	back     []Msg[M]
	length   int64 // Valid messages in front.
	pending  int64 // Messages copied into back, promoted by SwapBuffers.
	overflow int32
}

func NewMessageBox[M any](capacity int) *MessageBox[M] {
	return &MessageBox[M]{
		front: make([]Msg[M], capacity),
		back:  make([]Msg[M], capacity),
	}
}

func (b *MessageBox[M]) Capacity() int {
	return len(b.front)
}

func (b *MessageBox[M]) Length() int {
	return int(atomic.LoadInt64(&b.length))
}

// Clear resets the front buffer's length so kernels can refill it.
func (b *MessageBox[M]) Clear() {
	atomic.StoreInt64(&b.length, 0)
}

// Push reserves a slot with a fetch-and-add and writes the message there.
// Returns false (and latches the overflow flag) if the reservation lands
// past capacity.
func (b *MessageBox[M]) Push(m Msg[M]) bool {
	offset := atomic.AddInt64(&b.length, 1) - 1
	if offset >= int64(len(b.front)) {
		atomic.StoreInt32(&b.overflow, 1)
		return false
	}
	b.front[offset] = m
	return true
}

func (b *MessageBox[M]) Overflowed() bool {
	return atomic.LoadInt32(&b.overflow) == 1
}

// Buffer returns the readable messages of the current superstep.
func (b *MessageBox[M]) Buffer() []Msg[M] {
	n := atomic.LoadInt64(&b.length)
	if n > int64(len(b.front)) {
		n = int64(len(b.front))
	}
	return b.front[:n]
}

// RecvMsgs enqueues a copy of the peer outbox's readable messages into this
// box's back buffer. The copy runs on the given stream, which must be the
// source partition's, so that it observes a fully-completed expand.
func (b *MessageBox[M]) RecvMsgs(peer *MessageBox[M], stream *Stream) {
	stream.Launch(func() {
		msgs := peer.Buffer()
		if len(msgs) > len(b.back) {
			atomic.StoreInt32(&b.overflow, 1)
			msgs = msgs[:len(b.back)]
		}
		copy(b.back, msgs)
		atomic.StoreInt64(&b.pending, int64(len(msgs)))
	})
}

// SwapBuffers exchanges the role of the two buffers without data motion:
// messages received this step become readable, and the new back buffer's
// length is reset before it is written again.
func (b *MessageBox[M]) SwapBuffers() {
	b.front, b.back = b.back, b.front
	atomic.StoreInt64(&b.length, atomic.LoadInt64(&b.pending))
	atomic.StoreInt64(&b.pending, 0)
}
