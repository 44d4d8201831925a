package paymentdto

type InitiatePaymentInput struct {
	ReservationID string
	Amount        int64
	PhoneNumber   string
	OperatorCode  string
	Reference     string
	Metadata      map[string]string
}
