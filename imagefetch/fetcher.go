// Package imagefetch loads icon and emote images over HTTP.
//
// Fetched images are kept in a bounded in-memory cache and, optionally, in a shared
// store. Concurrent requests for the same URL are merged into one, and the remote
// endpoint is never hit faster than the configured rate.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/Drolfothesgnir/bbstyle/tmpstore"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// MaxImageSize is the largest image accepted from the remote endpoint.
	MaxImageSize = 4 << 20

	defaultCacheSize = 256
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = rate.Limit(10)
	defaultBurst     = 20
)

var (
	ErrNotImage         = errors.New("response is not an image")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrTooLarge         = errors.New("image is too large")
)

// Fetcher loads images over HTTP. It's safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	memory  *lru.Cache[string, tmpstore.Image]

	// shared is the optional store shared between service instances.
	shared    tmpstore.Store
	sharedTTL time.Duration

	cacheSize int
	logger    zerolog.Logger
}

// Option is a decorator function which allows to set optional fields of the [Fetcher].
type Option func(f *Fetcher)

// WithHTTPClient replaces the default client, which has a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the timeout of a single request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit limits the requests to the remote endpoint.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithCacheSize sets the number of images kept in memory.
func WithCacheSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.cacheSize = size
		}
	}
}

// WithSharedStore makes the fetcher look up the store before going to the network,
// and save every fetched image there for ttl.
func WithSharedStore(store tmpstore.Store, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.shared = store
		f.sharedTTL = ttl
	}
}

// WithLogger sets the logger. The fetcher is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a [Fetcher] with the given options.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(defaultRateLimit, defaultBurst),
		cacheSize: defaultCacheSize,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	memory, err := lru.New[string, tmpstore.Image](f.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create image cache: %w", err)
	}
	f.memory = memory

	return f, nil
}

// Fetch returns the image data. It makes the Fetcher usable by the markup parser.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	img, err := f.Image(ctx, url)
	if err != nil {
		return nil, err
	}
	return img.Data, nil
}

// Image returns the image together with its content type.
//
// NOTE: concurrent calls for the same URL share the first caller's request,
// so cancelling the first caller's ctx fails all of them.
func (f *Fetcher) Image(ctx context.Context, url string) (tmpstore.Image, error) {
	if img, ok := f.memory.Get(url); ok {
		metricRequests.WithLabelValues(resultMemory).Inc()
		return img, nil
	}

	v, err, shared := f.group.Do(url, func() (any, error) {
		return f.load(ctx, url)
	})
	if shared {
		metricMerged.Inc()
	}
	if err != nil {
		return tmpstore.Image{}, err
	}

	return v.(tmpstore.Image), nil
}

// load goes through the shared store and the network.
func (f *Fetcher) load(ctx context.Context, url string) (tmpstore.Image, error) {
	// somebody might have finished loading the same image just before we got here
	if img, ok := f.memory.Get(url); ok {
		metricRequests.WithLabelValues(resultMemory).Inc()
		return img, nil
	}

	if f.shared != nil {
		img, err := f.shared.GetImage(ctx, url)
		switch {
		case err == nil:
			metricRequests.WithLabelValues(resultShared).Inc()
			f.memory.Add(url, *img)
			return *img, nil

		case errors.Is(err, tmpstore.ErrCorruptImage):
			f.logger.Warn().Err(err).Str("url", url).Msg("dropping corrupt image from the shared store")
			if err := f.shared.DeleteImage(ctx, url); err != nil {
				f.logger.Warn().Err(err).Str("url", url).Msg("cannot delete image from the shared store")
			}

		case !errors.Is(err, tmpstore.ErrCacheMiss):
			f.logger.Warn().Err(err).Str("url", url).Msg("cannot read shared image store")
		}
	}

	start := time.Now()
	img, err := f.download(ctx, url)
	metricDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metricRequests.WithLabelValues(resultFailed).Inc()
		return tmpstore.Image{}, err
	}

	metricRequests.WithLabelValues(resultFetched).Inc()
	f.memory.Add(url, img)

	if f.shared != nil {
		if err := f.shared.SaveImage(ctx, url, img, f.sharedTTL); err != nil {
			f.logger.Warn().Err(err).Str("url", url).Msg("cannot save image to the shared store")
		}
	}

	f.logger.Debug().Str("url", url).Int("size", len(img.Data)).Msg("image fetched")

	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (tmpstore.Image, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return tmpstore.Image{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tmpstore.Image{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return tmpstore.Image{}, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tmpstore.Image{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return tmpstore.Image{}, fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return tmpstore.Image{}, fmt.Errorf("reading image: %w", err)
	}

	if len(data) > MaxImageSize {
		return tmpstore.Image{}, ErrTooLarge
	}

	return tmpstore.Image{
		ContentType: mediaType,
		Data:        data,
		FetchedAt:   time.Now(),
	}, nil
}
