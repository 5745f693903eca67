package messaging

import (
	"context"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
)

// Subjects for kitchen order routing. Orders fan out per node so each
// kitchen consumes only its own stream.
const (
	KitchenOrderSubjectPrefix = "kitchen.orders."
)

// Publisher delivers kitchen orders to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/messaging.go -package=mocks -mock_names=Publisher=MockMessagingPublisher
type Publisher interface {
	// PublishKitchenOrder publishes an order on the node's kitchen subject
	PublishKitchenOrder(ctx context.Context, order domain.KitchenOrder) error

	// Close releases the broker connection
	Close()
}
