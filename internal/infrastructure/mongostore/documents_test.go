package mongostore

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSecretDocumentKeyedByAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := toSecretDocument(domain.NewSecret("ACC_AIRTEL", "s3cr3t", 3600, now))

	assert.Equal(t, "my_pvit_secret_token:ACC_AIRTEL", doc.ID)
	assert.Equal(t, now.Add(time.Hour), doc.ExpirationDate)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	for _, key := range []string{"secret", "expires_in", "operation_account_code", "expiration_date"} {
		assert.Contains(t, fields, key)
	}
}

func TestTransactionDocumentFieldNames(t *testing.T) {
	raw, err := bson.Marshal(toTransactionDocument(&domain.PaymentTransaction{
		ID:            "id-1",
		ReservationID: "R1",
		TransactionID: "TX-1",
		Amount:        5000,
		Status:        domain.StatusPending,
	}))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, "R1", fields["reservationId"])
	assert.Equal(t, "TX-1", fields["transactionId"])
	assert.Equal(t, "PENDING", fields["status"])
	assert.NotContains(t, fields, "webhookReceivedAt")
}

func TestSaleDocumentToDomain(t *testing.T) {
	var doc saleDocument
	raw, err := bson.Marshal(bson.M{
		"_id":           "v1",
		"reservationId": "R1",
		"voyageId":      "VOY",
		"classe":        "VIP",
		"status":        "Annuler",
		"nom":           "ignored",
	})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &doc))

	sale := doc.toDomain()
	assert.Equal(t, domain.SaleStatusCancelled, sale.Status)
	assert.Equal(t, domain.FareClassVIP, sale.Classe)
	assert.Equal(t, "VOY", sale.VoyageID)
}
