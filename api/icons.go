package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	IconKindAvatar = "avatar"
	IconKindEicon  = "eicon"
)

type IconRequest struct {
	Kind string `uri:"kind" binding:"required,oneof=avatar eicon"`
	Name string `uri:"name" binding:"required,max=100"`
}

// getIcon proxies user avatars and emotes, so the clients only talk to this service.
func (service *Service) getIcon(ctx *gin.Context) {
	var req IconRequest
	if err := ctx.ShouldBindUri(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidKind, ExtractErrorFields(err)...))
		return
	}

	url := service.links.Eicon(req.Name)
	if req.Kind == IconKindAvatar {
		url = service.links.Avatar(req.Name)
	}

	// the request context, so a client going away cancels the download
	img, err := service.images.Image(ctx.Request.Context(), url)
	if err != nil {
		err := fmt.Errorf("%w %q: %w", ErrIconFetch, req.Name, err)
		ctx.JSON(http.StatusBadGateway, NewErrorResponse(err))
		return
	}

	ctx.Header("Cache-Control", "public, max-age=3600")
	ctx.Data(http.StatusOK, img.ContentType, img.Data)
}
