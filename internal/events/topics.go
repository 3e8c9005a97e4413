package events

// Topic constants for domain events emitted by the storefront engine.
const (
	TopicOrderCreated = "order.created"
	TopicCartCleared  = "cart.cleared"
)
