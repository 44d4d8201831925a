package mongostore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) GetSecret(ctx context.Context, accountCode string) (*domain.Secret, error) {
	var doc secretDocument
	err := s.Settings.FindOne(ctx, bson.M{"_id": secretKeyPrefix + accountCode}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) SaveSecret(ctx context.Context, secret *domain.Secret) error {
	doc := toSecretDocument(secret)
	_, err := s.Settings.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	_, err := s.Transactions.InsertOne(ctx, toTransactionDocument(tx))
	return err
}

func (s *Store) GetTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	var doc transactionDocument
	err := s.Transactions.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, transactionID string, upd domain.TransactionStatusChange) error {
	set := bson.M{
		"status":    string(upd.Status),
		"updatedAt": upd.UpdatedAt,
	}
	if upd.Operator != "" {
		set["operator"] = upd.Operator
	}
	if upd.WebhookReceivedAt != nil {
		set["webhookReceivedAt"] = *upd.WebhookReceivedAt
	}
	res, err := s.Transactions.UpdateOne(ctx, bson.M{"transactionId": transactionID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) MarkReservationPaid(ctx context.Context, reservationID string, at time.Time) (*domain.MarkPaidResult, error) {
	result := &domain.MarkPaidResult{}
	err := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		*result = domain.MarkPaidResult{}
		sales, err := s.findSales(sc, reservationID)
		if err != nil {
			return err
		}

		var pending []string
		for _, sale := range sales {
			switch sale.Status {
			case domain.SaleStatusPaid:
				result.AlreadyPaid++
			case domain.SaleStatusCancelled:
				result.SkippedCanceled++
			default:
				pending = append(pending, sale.ID)
			}
		}
		if len(pending) == 0 {
			return nil
		}

		_, err = s.Sales.UpdateMany(sc,
			bson.M{"_id": bson.M{"$in": pending}},
			bson.M{"$set": bson.M{
				"status":             string(domain.SaleStatusPaid),
				"paymentConfirmedAt": at,
				"updatedAt":          at,
			}})
		if err != nil {
			return err
		}
		result.Marked = len(pending)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ReleaseReservation(ctx context.Context, reservationID, reason string, at time.Time) (*domain.ReleaseResult, error) {
	result := &domain.ReleaseResult{}
	err := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		*result = domain.ReleaseResult{}
		sales, err := s.findSales(sc, reservationID)
		if err != nil {
			return err
		}
		held := domain.ReleasableSales(sales)
		result.Seats = domain.AggregateReleasedSeats(held)
		if len(held) == 0 {
			return nil
		}

		tripIDs := make([]string, 0, len(result.Seats))
		for id := range result.Seats {
			tripIDs = append(tripIDs, id)
		}
		sort.Strings(tripIDs)
		for _, id := range tripIDs {
			if err := s.releaseTrip(sc, id, result.Seats[id]); err != nil {
				return err
			}
		}

		ids := make([]string, 0, len(held))
		for _, sale := range held {
			ids = append(ids, sale.ID)
		}
		_, err = s.Sales.UpdateMany(sc,
			bson.M{"_id": bson.M{"$in": ids}},
			bson.M{"$set": bson.M{
				"status":       string(domain.SaleStatusCancelled),
				"cancelledAt":  at,
				"cancelReason": reason,
				"updatedAt":    at,
			}})
		if err != nil {
			return err
		}
		result.SalesCancelled = len(held)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) SaveWebhookDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	_, err := s.Webhooks.InsertOne(ctx, webhookDocument{
		ID:            delivery.ID,
		TransactionID: delivery.TransactionID,
		Status:        delivery.Status,
		Operator:      delivery.Operator,
		Amount:        delivery.Amount,
		RawPayload:    string(delivery.RawPayload),
		Outcome:       string(delivery.Outcome),
		Error:         delivery.Error,
		ReceivedAt:    delivery.ReceivedAt,
	})
	return err
}

func (s *Store) findSales(ctx context.Context, reservationID string) ([]*domain.Sale, error) {
	cursor, err := s.Sales.Find(ctx, bson.M{"reservationId": reservationID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []saleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	sales := make([]*domain.Sale, len(docs))
	for i, doc := range docs {
		sales[i] = doc.toDomain()
	}
	return sales, nil
}

func (s *Store) releaseTrip(ctx context.Context, tripID string, counts domain.SeatCounts) error {
	var doc tripDocument
	err := s.Trips.FindOne(ctx, bson.M{"_id": tripID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	trip := domain.Trip{ID: doc.ID, SeatsTakenEconomy: doc.PlacePriseEco, SeatsTakenVIP: doc.PlacePriseVIP}
	trip.Release(counts)
	_, err = s.Trips.UpdateOne(ctx,
		bson.M{"_id": tripID},
		bson.M{"$set": bson.M{
			"place_prise_eco": trip.SeatsTakenEconomy,
			"place_prise_vip": trip.SeatsTakenVIP,
		}})
	return err
}
