package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/request"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-mypvit-relay/internal/usecase/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	uc payment.PaymentUsecase
}

func NewPaymentHandler(uc payment.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req request.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.uc.InitiatePayment(c.Request.Context(), req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.InitiatePaymentResponse{
		Success:             true,
		TransactionID:       out.TransactionID,
		MerchantReferenceID: out.MerchantReferenceID,
		Reference:           out.Reference,
		Status:              string(out.Status),
		Amount:              out.Amount,
		Operator:            out.Operator,
		Message:             out.Message,
	})
}

func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	transactionID := strings.TrimSpace(c.Param("transactionId"))
	if transactionID == "" {
		badRequest(c, "transactionId is required", "transactionId")
		return
	}

	out, err := h.uc.GetPaymentStatus(c.Request.Context(), transactionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.PaymentStatusResponse{
		Success:       true,
		TransactionID: out.TransactionID,
		ReservationID: out.ReservationID,
		Status:        string(out.Status),
		Amount:        out.Amount,
		Operator:      out.Operator,
		Timestamp:     out.Timestamp,
	})
}

func (h *PaymentHandler) CalculateFees(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		badRequest(c, "amount is required", "amount")
		return
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount <= 0 {
		badRequest(c, "amount must be a positive integer", "amount")
		return
	}

	quote, err := h.uc.CalculateFees(c.Request.Context(), amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FeesResponse{
		Success:     true,
		Amount:      quote.Amount,
		Fees:        quote.Fees,
		TotalAmount: quote.Total,
		Breakdown:   quote.Breakdown,
	})
}

func (h *PaymentHandler) CheckBalance(c *gin.Context) {
	balance, err := h.uc.CheckBalance(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.BalanceResponse{
		Success:  true,
		Balance:  balance.Balance,
		Currency: balance.Currency,
	})
}
