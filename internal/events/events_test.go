package events

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	id, err := LogPublisher{Logger: zap.New(core)}.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "ORD-1", Total: 500})
	require.NoError(t, err)
	require.Equal(t, "ORD-1", id)
	require.Equal(t, 1, logs.FilterMessage("order placed").Len())
}

func TestPubSubPublisher(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "orders")
	require.NoError(t, err)
	t.Cleanup(topic.Stop)

	pub, err := NewPubSubPublisher(topic)
	require.NoError(t, err)

	id, err := pub.PublishOrderPlaced(ctx, OrderPlaced{OrderID: "ORD-7", PaymentMethod: "paypal", Total: 1234})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, OrderPlacedType, msgs[0].Attributes["type"])
	require.Equal(t, "ORD-7", msgs[0].Attributes["orderId"])

	var decoded OrderPlaced
	require.NoError(t, json.Unmarshal(msgs[0].Data, &decoded))
	require.Equal(t, int64(1234), decoded.Total)
}

func TestNewPubSubPublisherRequiresTopic(t *testing.T) {
	_, err := NewPubSubPublisher(nil)
	require.Error(t, err)
}
