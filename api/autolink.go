package api

import (
	"net/http"

	"github.com/Drolfothesgnir/bbstyle/bbcode"
	"github.com/gin-gonic/gin"
)

type AutoLinkRequest struct {
	Text string `json:"text" binding:"required,max=20000"`
	// Indicator overrides the configured prefix of bare URLs.
	Indicator string `json:"indicator" binding:"max=16"`
}

type AutoLinkResponse struct {
	Text string `json:"text"`
}

func (service *Service) autoLink(ctx *gin.Context) {
	var req AutoLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	indicator := req.Indicator
	if indicator == "" {
		indicator = service.urlIndicator()
	}

	ctx.JSON(http.StatusOK, AutoLinkResponse{Text: bbcode.AutoLink(req.Text, indicator)})
}
