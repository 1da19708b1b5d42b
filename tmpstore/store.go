package tmpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Drolfothesgnir/bbstyle/util"
	"github.com/redis/go-redis/v9"
)

// Different key prefixes for different use cases
const (
	IconPrefix = "icon:"
)

var (
	// ErrCacheMiss is returned when the image was never stored or has expired.
	ErrCacheMiss = errors.New("image is not cached or expired")

	// ErrCorruptImage is returned when the stored value cannot be decoded.
	// Such an entry is never going to be readable and should be deleted.
	ErrCorruptImage = errors.New("stored image is corrupt")
)

// Image is a fetched icon or emote, kept between requests.
type Image struct {
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type Store interface {
	SaveImage(ctx context.Context, url string, img Image, ttl time.Duration) error
	GetImage(ctx context.Context, url string) (*Image, error)
	DeleteImage(ctx context.Context, url string) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
}

func NewStore(config *util.Config) Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress, //  default "localhost:6379"
		Password: "",                  // "" for no password, ok for now
		DB:       0,                   // 0 for default database
	})

	return NewStoreWithClient(rdb)
}

// NewStoreWithClient wraps an existing client, e.g. one shared with other components.
func NewStoreWithClient(client *redis.Client) Store {
	return &RedisStore{client: client}
}

// SaveImage stores the image under its source URL. The image is gone after ttl.
func (store *RedisStore) SaveImage(
	ctx context.Context,
	url string,
	img Image,
	ttl time.Duration,
) error {
	jsonData, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("failed to serialize image: %w", err)
	}

	key := IconPrefix + url
	return store.client.Set(ctx, key, jsonData, ttl).Err()
}

// GetImage returns the image stored under the URL.
// Returns ErrCacheMiss if not found or expired.
func (store *RedisStore) GetImage(ctx context.Context, url string) (*Image, error) {
	key := IconPrefix + url

	jsonData, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	var img Image
	if err := json.Unmarshal(jsonData, &img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	return &img, nil
}

// DeleteImage removes the image stored under the URL. Missing images are not an error.
func (store *RedisStore) DeleteImage(ctx context.Context, url string) error {
	key := IconPrefix + url
	return store.client.Del(ctx, key).Err()
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}
