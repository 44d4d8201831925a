package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/request"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/webhook"
	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = 64 << 10

type WebhookHandler struct {
	uc  webhook.WebhookUsecase
	now func() time.Time
}

func NewWebhookHandler(uc webhook.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc, now: time.Now}
}

// HandleWebhook acknowledges every delivery with 200, even malformed ones.
// Anything but 200 makes the gateway retry the same notification.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	raw, err := c.GetRawData()
	if err != nil {
		slog.Warn("failed to read webhook body", "error", err.Error())
	}

	var req request.WebhookRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			slog.Warn("malformed webhook payload", "error", err.Error())
		}
	}

	outcome := h.uc.HandleWebhook(c.Request.Context(), req.ToStatusUpdate(h.now()), raw)
	slog.Debug("webhook handled", "outcome", string(outcome))

	c.JSON(http.StatusOK, response.WebhookResponse{Success: true})
}
