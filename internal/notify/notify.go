package notify

// Notifier delivers a composed agenda message to a channel.
type Notifier interface {
	Send(message, channel string) error
}

// NoopNotifier does nothing (for previews or disabled delivery).
type NoopNotifier struct{}

func (NoopNotifier) Send(message, channel string) error { return nil }
