package jetstream

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/messaging"
)

// Publisher publishes kitchen orders to NATS JetStream.
type Publisher struct {
	conn adapter.NatsConn
	js   adapter.JetStream
	json adapter.JSON
}

// NewPublisher connects to NATS and returns a JetStream-backed publisher.
func NewPublisher(njs adapter.NatsJetStream, json adapter.JSON, url string) (*Publisher, error) {
	conn, js, err := njs.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("connected to nats", zap.String("url", url))
	return &Publisher{conn: conn, js: js, json: json}, nil
}

// PublishKitchenOrder publishes an order on the node's kitchen subject.
func (p *Publisher) PublishKitchenOrder(ctx context.Context, order domain.KitchenOrder) error {
	data, err := p.json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal kitchen order: %w", err)
	}

	subject := messaging.KitchenOrderSubjectPrefix + order.NodeID
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish kitchen order: %w", err)
	}

	logger.DebugCtx(ctx, "kitchen order published",
		zap.String("subject", subject),
		zap.String("orderID", order.OrderID))
	return nil
}

// Close releases the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
