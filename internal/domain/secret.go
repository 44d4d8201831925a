package domain

import "time"

// Secret is the gateway authentication secret of one merchant operation
// account. ExpirationAt is always CreatedAt + ExpiresIn seconds.
type Secret struct {
	AccountCode  string
	Value        string
	ExpiresIn    int64
	CreatedAt    time.Time
	ExpirationAt time.Time
	UpdatedAt    time.Time
}

func NewSecret(accountCode, value string, expiresIn int64, now time.Time) *Secret {
	return &Secret{
		AccountCode:  accountCode,
		Value:        value,
		ExpiresIn:    expiresIn,
		CreatedAt:    now,
		ExpirationAt: now.Add(time.Duration(expiresIn) * time.Second),
		UpdatedAt:    now,
	}
}

// Expired reports whether the secret can no longer be used at now.
func (s *Secret) Expired(now time.Time) bool {
	return !s.ExpirationAt.After(now)
}
