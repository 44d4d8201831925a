package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/request"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/secret"
	"github.com/gin-gonic/gin"
)

type SecretHandler struct {
	uc             secret.SecretUsecase
	defaultAccount string
}

// NewSecretHandler renews defaultAccount when a renew request names none.
func NewSecretHandler(uc secret.SecretUsecase, defaultAccount string) *SecretHandler {
	return &SecretHandler{uc: uc, defaultAccount: defaultAccount}
}

func (h *SecretHandler) RenewSecret(c *gin.Context) {
	var req request.RenewSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	account := req.AccountCode
	if account == "" {
		account = c.Query("account")
	}
	if account == "" {
		account = h.defaultAccount
	}

	s, err := h.uc.RenewSecret(c.Request.Context(), account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, secretResponse("secret renewed", s))
}

func (h *SecretHandler) ReceiveToken(c *gin.Context) {
	var req request.ReceiveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	s, err := h.uc.ReceiveSecret(c.Request.Context(), req.ToInput())
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			badRequest(c, "missing required fields", domain.FieldMessages(err)...)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, secretResponse("secret stored", s))
}

func secretResponse(message string, s *domain.Secret) response.SecretResponse {
	return response.SecretResponse{
		Success:     true,
		Message:     message,
		AccountCode: s.AccountCode,
		ExpiresIn:   s.ExpiresIn,
		RenewedAt:   s.UpdatedAt,
	}
}
