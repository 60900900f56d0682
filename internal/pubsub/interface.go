package pubsub

// PubSubClient publishes events and decodes pushed messages.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close()
}
