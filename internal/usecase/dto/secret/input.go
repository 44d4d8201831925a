package secretdto

type ReceiveSecretInput struct {
	AccountCode string
	Secret      string
	ExpiresIn   int64
}
