package client

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type initiatePaymentRequest struct {
	Agent                        string `json:"agent"`
	Amount                       int64  `json:"amount"`
	Product                      string `json:"product"`
	Reference                    string `json:"reference"`
	Service                      string `json:"service"`
	CallbackURLCode              string `json:"callback_url_code"`
	CustomerAccountNumber        string `json:"customer_account_number"`
	MerchantOperationAccountCode string `json:"merchant_operation_account_code"`
	TransactionType              string `json:"transaction_type"`
	OwnerCharge                  string `json:"owner_charge"`
	OperatorOwnerCharge          string `json:"operator_owner_charge"`
	FreeInfo                     string `json:"free_info"`
	OperatorCode                 string `json:"operator_code"`
}

type initiatePaymentResponse struct {
	StatusCode          flexString `json:"status_code"`
	Status              string     `json:"status"`
	ReferenceID         string     `json:"reference_id"`
	MerchantReferenceID string     `json:"merchant_reference_id"`
	Operator            string     `json:"operator"`
	Message             string     `json:"message"`
}

type renewSecretResponse struct {
	Secret    string  `json:"secret"`
	ExpiresIn flexInt `json:"expires_in"`
}

type statusResponse struct {
	Status      string     `json:"status"`
	ReferenceID string     `json:"reference_id"`
	Amount      flexInt    `json:"amount"`
	Operator    string     `json:"operator"`
	Timestamp   flexString `json:"timestamp"`
}

type feesResponse struct {
	Fees        float64         `json:"fees"`
	TotalAmount float64         `json:"total_amount"`
	Breakdown   json.RawMessage `json:"breakdown"`
}

type balanceResponse struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type errorResponse struct {
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

// flexInt accepts integers encoded as JSON numbers or strings.
type flexInt int64

func (i *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return err
	}
	*i = flexInt(f)
	return nil
}
