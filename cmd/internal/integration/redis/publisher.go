package redisclient

import (
	"context"
	"encoding/json"
	"time"

	"nabha/cmd/internal/domain/entity"

	"github.com/go-redis/redis/v8"
)

const publishTimeout = 2 * time.Second

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Channel is the pub/sub channel carrying one user's notifications.
func Channel(userID string) string {
	return "notifications:" + userID
}

// NotificationPublisher fans notifications out on Redis pub/sub so other
// processes (push gateways, websocket edges) can relay them.
type NotificationPublisher struct {
	client *redis.Client
}

func NewNotificationPublisher(client *redis.Client) *NotificationPublisher {
	return &NotificationPublisher{client: client}
}

func (p *NotificationPublisher) Publish(n *entity.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return p.client.Publish(ctx, Channel(n.UserID), data).Err()
}

func (p *NotificationPublisher) Close() error {
	return p.client.Close()
}
