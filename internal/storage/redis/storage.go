package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Score operations

func (s *Storage) IncrementScore(ctx context.Context, game model.GameKey, userID model.UserID, displayName string, delta int64) (int64, error) {
	// Single round trip: HINCRBY carries the upsert, HSET refreshes the
	// display name alongside it.
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, scoreKey(game), string(userID), delta)
	pipe.HSet(ctx, scoreNamesKey(game), string(userID), displayName)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *Storage) Scores(ctx context.Context, game model.GameKey) ([]model.ScoreRecord, error) {
	totals, err := s.client.HGetAll(ctx, scoreKey(game)).Result()
	if err != nil {
		return nil, err
	}
	names, err := s.client.HGetAll(ctx, scoreNamesKey(game)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.ScoreRecord, 0, len(totals))
	for userID, raw := range totals {
		total, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		records = append(records, model.ScoreRecord{
			UserID:      model.UserID(userID),
			DisplayName: names[userID],
			Score:       total,
		})
	}
	return records, nil
}

// Role panel operations

func (s *Storage) ReplaceBinding(ctx context.Context, binding *model.ComponentBinding) error {
	data, err := json.Marshal(binding)
	if err != nil {
		return err
	}

	// SET overwrites the guild's previous binding; the index set tracks
	// which guilds have one stored.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, bindingKey(binding.GuildID), data, 0)
	pipe.SAdd(ctx, bindingIndexKey(), string(binding.GuildID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetBinding(ctx context.Context, guildID model.GuildID) (*model.ComponentBinding, error) {
	data, err := s.client.Get(ctx, bindingKey(guildID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBindingNotFound
		}
		return nil, err
	}

	var binding model.ComponentBinding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, err
	}
	return &binding, nil
}

func (s *Storage) ListBindings(ctx context.Context) ([]*model.ComponentBinding, error) {
	guildIDs, err := s.client.SMembers(ctx, bindingIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	bindings := make([]*model.ComponentBinding, 0, len(guildIDs))
	for _, guildID := range guildIDs {
		binding, err := s.GetBinding(ctx, model.GuildID(guildID))
		if errors.Is(err, model.ErrBindingNotFound) {
			// Index entry outlived its binding; drop it
			_ = s.client.SRem(ctx, bindingIndexKey(), guildID).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func (s *Storage) DeleteBinding(ctx context.Context, guildID model.GuildID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, bindingKey(guildID))
	pipe.SRem(ctx, bindingIndexKey(), string(guildID))
	_, err := pipe.Exec(ctx)
	return err
}

// Account link operations

func (s *Storage) SaveLink(ctx context.Context, link *model.AccountLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, linkKey(link.UserID), data, 0).Err()
}

func (s *Storage) GetLink(ctx context.Context, userID model.UserID) (*model.AccountLink, error) {
	data, err := s.client.Get(ctx, linkKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLinkNotFound
		}
		return nil, err
	}

	var link model.AccountLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *Storage) DeleteLink(ctx context.Context, userID model.UserID) error {
	return s.client.Del(ctx, linkKey(userID)).Err()
}
