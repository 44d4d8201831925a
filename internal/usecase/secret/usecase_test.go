package secret

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/client/clienttest"
	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/memory"
	secretdto "github.com/LavaJover/shvark-mypvit-relay/internal/usecase/dto/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newUsecase(t *testing.T) (*DefaultSecretUsecase, *memory.Store, *clienttest.Gateway, *clienttest.Events) {
	t.Helper()
	cfg := &config.Config{
		MyPVIT: config.MyPVIT{
			CallbackURLCode: "CB01",
			BootstrapSecret: "bootstrap",
		},
		Accounts: []config.Account{{Code: "ACC_TEST", Password: "pwd"}},
	}
	store := memory.NewStore()
	gw := &clienttest.Gateway{}
	events := &clienttest.Events{}
	uc := NewDefaultSecretUsecase(cfg, store, gw, events)
	uc.now = func() time.Time { return fixedNow }
	return uc, store, gw, events
}

func TestEnsureValidSecret_RenewsWhenAbsent(t *testing.T) {
	uc, store, gw, events := newUsecase(t)

	secret, err := uc.EnsureValidSecret(context.Background(), "ACC_TEST")
	require.NoError(t, err)
	assert.Equal(t, "renewed-secret", secret.Value)
	require.Equal(t, 1, gw.RenewCount())
	assert.Equal(t, "bootstrap", gw.Renewals[0].CurrentSecret)
	assert.Equal(t, "pwd", gw.Renewals[0].Password)
	assert.Equal(t, "CB01", gw.Renewals[0].CallbackCode)

	stored, err := store.GetSecret(context.Background(), "ACC_TEST")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), stored.ExpirationAt)
	assert.Equal(t, 1, events.Count(domain.EventSecretRenewed))
}

func TestEnsureValidSecret_RenewsExactlyOnceWhenExpired(t *testing.T) {
	for _, expiresAt := range []time.Time{fixedNow, fixedNow.Add(-time.Minute)} {
		uc, store, gw, _ := newUsecase(t)
		require.NoError(t, store.SaveSecret(context.Background(), &domain.Secret{
			AccountCode:  "ACC_TEST",
			Value:        "stale",
			ExpiresIn:    60,
			ExpirationAt: expiresAt,
		}))

		secret, err := uc.EnsureValidSecret(context.Background(), "ACC_TEST")
		require.NoError(t, err)
		assert.Equal(t, "renewed-secret", secret.Value)
		require.Equal(t, 1, gw.RenewCount())
		assert.Equal(t, "stale", gw.Renewals[0].CurrentSecret)
	}
}

func TestEnsureValidSecret_NoRenewalWhileValid(t *testing.T) {
	uc, store, gw, _ := newUsecase(t)
	require.NoError(t, store.SaveSecret(context.Background(), domain.NewSecret("ACC_TEST", "live", 60, fixedNow.Add(-59*time.Second))))

	for i := 0; i < 3; i++ {
		secret, err := uc.EnsureValidSecret(context.Background(), "ACC_TEST")
		require.NoError(t, err)
		assert.Equal(t, "live", secret.Value)
	}
	assert.Zero(t, gw.RenewCount())
}

func TestRenewSecret_UnknownAccountIsConfigurationError(t *testing.T) {
	uc, _, gw, _ := newUsecase(t)

	_, err := uc.RenewSecret(context.Background(), "ACC_OTHER")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, gw.RenewCount())
}

func TestRenewSecret_ErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", &domain.GatewayError{Kind: domain.ErrAuthenticationFailed, StatusCode: 401}, domain.ErrAuthenticationFailed},
		{"callback inactive", &domain.GatewayError{Kind: domain.ErrCallbackNotActivated, StatusCode: 403}, domain.ErrAuthenticationFailed},
		{"network", &domain.GatewayError{Kind: domain.ErrGatewayUnavailable}, domain.ErrGatewayUnavailable},
		{"malformed", &domain.GatewayError{Kind: domain.ErrGatewayRejected, StatusCode: 200}, domain.ErrGatewayUnavailable},
		{"plain", errors.New("boom"), domain.ErrGatewayUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, store, gw, events := newUsecase(t)
			gw.RenewFunc = func(domain.RenewSecretRequest) (*domain.RenewedSecret, error) { return nil, tc.err }

			_, err := uc.RenewSecret(context.Background(), "ACC_TEST")
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, gw.RenewCount())
			assert.Equal(t, 1, events.Count(domain.EventSecretRenewalFailed))

			_, err = store.GetSecret(context.Background(), "ACC_TEST")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestReceiveSecret(t *testing.T) {
	uc, store, gw, events := newUsecase(t)

	secret, err := uc.ReceiveSecret(context.Background(), &secretdto.ReceiveSecretInput{
		AccountCode: "ACC_PUSHED",
		Secret:      "pushed",
		ExpiresIn:   120,
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(2*time.Minute), secret.ExpirationAt)

	stored, err := store.GetSecret(context.Background(), "ACC_PUSHED")
	require.NoError(t, err)
	assert.Equal(t, "pushed", stored.Value)
	assert.Zero(t, gw.RenewCount())
	assert.Equal(t, 1, events.Count(domain.EventSecretReceived))
}

func TestReceiveSecret_ListsMissingFields(t *testing.T) {
	uc, _, _, _ := newUsecase(t)

	_, err := uc.ReceiveSecret(context.Background(), &secretdto.ReceiveSecretInput{Secret: "x"})
	require.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, []string{"operationAccountCode", "expiresIn"}, domain.FieldMessages(err))
}
