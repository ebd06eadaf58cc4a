package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus is the cached view of a user's online state. The Postgres
// users table stays authoritative; this cache exists so other service
// instances (or ops tooling) can read presence without hitting the database,
// and its pub/sub channel is the seam a multi-node broadcast backplane would
// plug into.
type PresenceStatus struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// PresenceStore mirrors presence transitions into Redis.
type PresenceStore struct {
	client    *goredis.Client
	publisher *Publisher
	ttl       time.Duration
}

const (
	presenceKeyPrefix = "presence:"
	presenceOnlineSet = "presence:online"
	presenceChannel   = "channel:presence"
)

func NewPresenceStore(client *goredis.Client, publisher *Publisher, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{
		client:    client,
		publisher: publisher,
		ttl:       ttl,
	}
}

// SetOnline marks a user as online.
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	now := time.Now()
	status := PresenceStatus{UserID: userID, IsOnline: true, LastSeen: now}

	pipe := p.client.Pipeline()
	data, _ := json.Marshal(status)
	pipe.Set(ctx, presenceKeyPrefix+userID, data, p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return p.publish(ctx, status)
}

// SetOffline marks a user as offline. The offline record is kept longer than
// the online TTL so last-seen queries keep working.
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	now := time.Now()
	status := PresenceStatus{UserID: userID, IsOnline: false, LastSeen: now}

	pipe := p.client.Pipeline()
	data, _ := json.Marshal(status)
	pipe.Set(ctx, presenceKeyPrefix+userID, data, 24*time.Hour)
	pipe.SRem(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return p.publish(ctx, status)
}

// GetPresence gets the cached presence of a user.
func (p *PresenceStore) GetPresence(ctx context.Context, userID string) (*PresenceStatus, error) {
	data, err := p.client.Get(ctx, presenceKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return &PresenceStatus{UserID: userID, IsOnline: false}, nil
	}
	if err != nil {
		return nil, err
	}

	var status PresenceStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetOnlineUsers returns all online user IDs.
func (p *PresenceStore) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

func (p *PresenceStore) publish(ctx context.Context, status PresenceStatus) error {
	if p.publisher == nil {
		return nil
	}
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, presenceChannel, data)
}
