package jetstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
	"github.com/hotpotspot/franchise-ledger/internal/mocks"
	"github.com/hotpotspot/franchise-ledger/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

func newPublisher(t *testing.T) (*jetstream.Publisher, *mocks.MockJetStream, *mocks.MockNatsConn) {
	t.Helper()

	ctrl := gomock.NewController(t)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	njs := mocks.NewMockNatsJetStream(ctrl)
	njs.EXPECT().Connect("nats://localhost:4222").Return(conn, js, nil)

	p, err := jetstream.NewPublisher(njs, adapter.NewJSON(), "nats://localhost:4222")
	require.NoError(t, err)
	return p, js, conn
}

func TestPublishKitchenOrder(t *testing.T) {
	p, js, _ := newPublisher(t)

	order := domain.KitchenOrder{
		OrderID:    "order-1",
		NodeID:     "node-1",
		ChefWallet: "0x4444444444444444444444444444444444444444",
		Items:      []string{"khinkali"},
		Amount:     1000,
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	js.EXPECT().
		Publish(gomock.Any(), "kitchen.orders.node-1", gomock.Any()).
		Return(&natsjs.PubAck{Stream: "KITCHEN"}, nil)

	assert.NoError(t, p.PublishKitchenOrder(context.Background(), order))
}

func TestPublishKitchenOrderFailure(t *testing.T) {
	p, js, _ := newPublisher(t)

	js.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("stream unavailable"))

	err := p.PublishKitchenOrder(context.Background(), domain.KitchenOrder{OrderID: "order-1", NodeID: "node-1"})
	assert.ErrorContains(t, err, "publish kitchen order")
}

func TestPublishKitchenOrderMarshalFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	njs := mocks.NewMockNatsJetStream(ctrl)
	njs.EXPECT().Connect("nats://localhost:4222").Return(conn, js, nil)

	jsonAdapter := mocks.NewMockJSON(ctrl)
	jsonAdapter.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("cycle"))

	p, err := jetstream.NewPublisher(njs, jsonAdapter, "nats://localhost:4222")
	require.NoError(t, err)

	err = p.PublishKitchenOrder(context.Background(), domain.KitchenOrder{OrderID: "order-1"})
	assert.ErrorContains(t, err, "marshal kitchen order")
}

func TestClose(t *testing.T) {
	p, _, conn := newPublisher(t)

	conn.EXPECT().Close()
	p.Close()
}

func TestNewPublisherConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	njs := mocks.NewMockNatsJetStream(ctrl)
	njs.EXPECT().Connect(gomock.Any()).Return(nil, nil, errors.New("refused"))

	_, err := jetstream.NewPublisher(njs, adapter.NewJSON(), "nats://localhost:4222")
	assert.ErrorContains(t, err, "connect to nats")
}
