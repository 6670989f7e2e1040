package core

// ConnectionID identifies one live signaling channel. It is assigned by the
// transport at connect time and is the "socketId" clients see.
type ConnectionID string

// Frame is one encoded outbound message.
type Frame []byte

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []ConnectionID
}
