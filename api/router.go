package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Establishes HTTP router.
func (service *Service) SetupRouter(server *http.Server) {
	router := gin.Default()

	router.Use(service.corsMiddleware())
	router.Use(metricsMiddleware())

	router.GET(PingURL, func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})

	router.POST(RenderURL, service.render)
	router.POST(AutoLinkURL, service.autoLink)
	router.GET(IconsURL+"/:kind/:name", service.getIcon)

	router.GET(MetricsURL, gin.WrapH(promhttp.Handler()))

	server.Handler = router
	service.router = router
}
