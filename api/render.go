package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Drolfothesgnir/bbstyle/bbcode"
	"github.com/gin-gonic/gin"
)

type RenderRequest struct {
	Message  string `json:"message" binding:"required,max=20000"`
	AutoLink bool   `json:"autolink"`
	// WaitMS is how long to wait for the images before responding.
	WaitMS int `json:"wait_ms" binding:"min=0,max=5000"`
}

type RenderResponse struct {
	Text     string            `json:"text"`
	Runs     []bbcode.StyleRun `json:"runs"`
	Warnings []bbcode.Warning  `json:"warnings"`
}

func (service *Service) render(ctx *gin.Context) {
	var req RenderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	message := req.Message
	if req.AutoLink {
		message = bbcode.AutoLink(message, service.urlIndicator())
	}

	res := service.renderer.Parse(ctx.Request.Context(), message)

	if req.WaitMS > 0 {
		waitCtx, cancel := context.WithTimeout(ctx.Request.Context(), time.Duration(req.WaitMS)*time.Millisecond)
		defer cancel()

		// images which are not there in time are reported as pending
		_ = res.Wait(waitCtx)
	}

	ctx.JSON(http.StatusOK, RenderResponse{
		Text:     res.Text,
		Runs:     res.Runs,
		Warnings: res.Warnings,
	})
}

func (service *Service) urlIndicator() string {
	if service.config.URLIndicator != "" {
		return service.config.URLIndicator
	}
	return bbcode.DefaultURLIndicator
}
