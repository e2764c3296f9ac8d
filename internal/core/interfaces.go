package core

// Frame is a raw encoded payload delivered to a transport.
type Frame []byte

// TransportID identifies one persistent client connection. Assigned at
// connect time, never reused for another live connection.
type TransportID string

// SignalConn abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []TransportID
}
