package publisher

// Publisher represents a service for publishing exported rows
type Publisher interface {
	// Publish publishes a message to the stream of a region
	Publish(region string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
