package engine

// Stream emulates a device stream: an ordered task queue serviced by a
// dedicated goroutine. Launches are asynchronous and execute FIFO, so every
// task observes the writes of all tasks launched before it on the same
// stream. Sync blocks the caller until the queue has drained.
type Stream struct {
	tasks chan func()
}

func NewStream() *Stream {
	s := &Stream{tasks: make(chan func(), 128)}
	go func() {
		for f := range s.tasks {
			f()
		}
	}()
	return s
}

func (s *Stream) Launch(f func()) {
	s.tasks <- f
}

func (s *Stream) Sync() {
	done := make(chan struct{})
	s.tasks <- func() { close(done) }
	<-done
}

// Close stops the service goroutine once queued tasks finish. The stream
// must not be used afterwards.
func (s *Stream) Close() {
	close(s.tasks)
}
