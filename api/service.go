package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Drolfothesgnir/bbstyle/bbcode"
	"github.com/Drolfothesgnir/bbstyle/tmpstore"
	"github.com/Drolfothesgnir/bbstyle/util"
	"github.com/gin-gonic/gin"
)

const (
	// api routes
	PingURL     = "/ping"
	RenderURL   = "/render"
	AutoLinkURL = "/autolink"
	IconsURL    = "/icons"
	MetricsURL  = "/metrics"
)

// Renderer converts chat messages into plain text and style runs.
type Renderer interface {
	Parse(ctx context.Context, input string) bbcode.Result
}

// ImageSource loads icon and emote images.
type ImageSource interface {
	Image(ctx context.Context, url string) (tmpstore.Image, error)
}

type Service struct {
	config   util.Config
	renderer Renderer
	images   ImageSource
	links    bbcode.Links
	server   *http.Server
	router   *gin.Engine
}

// Returns new service instance with provided config, renderer and image source.
func NewService(
	config util.Config,
	renderer Renderer,
	images ImageSource,
) (*Service, error) {
	addr, err := config.ListenAddress()
	if err != nil {
		return nil, fmt.Errorf("invalid http server address: %w", err)
	}

	service := &Service{
		config:   config,
		renderer: renderer,
		images:   images,
		links:    LinksFromConfig(config),
	}

	server := &http.Server{
		Addr: addr,
	}

	// caps how long a client can take to send just the headers (blocks slowloris).
	server.ReadHeaderTimeout = 5 * time.Second
	// caps time to read the full request (incl. body).
	server.ReadTimeout = 10 * time.Second
	// caps time you’ll spend writing the response, including waiting for images
	server.WriteTimeout = 15 * time.Second
	// how long to keep idle keep-alive connections open.
	server.IdleTimeout = 60 * time.Second

	service.SetupRouter(server)

	service.server = server

	return service, nil
}

// LinksFromConfig returns the profile and image endpoints from the config.
// Empty values fall back to the defaults.
func LinksFromConfig(config util.Config) bbcode.Links {
	links := bbcode.DefaultLinks()

	if config.ProfileURLBase != "" {
		links.ProfileBase = config.ProfileURLBase
	}
	if config.AvatarURLBase != "" {
		links.AvatarBase = config.AvatarURLBase
	}
	if config.EiconURLBase != "" {
		links.EiconBase = config.EiconURLBase
	}

	return links
}

// Start runs the HTTP server
func (service *Service) Start() error {
	return service.server.ListenAndServe()
}

func (service *Service) Shutdown(ctx context.Context) error {
	return service.server.Shutdown(ctx)
}
