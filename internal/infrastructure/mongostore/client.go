// Package mongostore implements the persistence ports on MongoDB, using the
// collection layout of the booking application's document store.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	settingsCollection     = "settings"
	transactionsCollection = "payment_transactions"
	salesCollection        = "ventes"
	tripsCollection        = "voyages"
	webhooksCollection     = "webhook_deliveries"
)

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Store gathers the collections used by the relay.
type Store struct {
	Client       *mongo.Client
	Settings     *mongo.Collection
	Transactions *mongo.Collection
	Sales        *mongo.Collection
	Trips        *mongo.Collection
	Webhooks     *mongo.Collection
}

func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		Client:       client,
		Settings:     db.Collection(settingsCollection),
		Transactions: db.Collection(transactionsCollection),
		Sales:        db.Collection(salesCollection),
		Trips:        db.Collection(tripsCollection),
		Webhooks:     db.Collection(webhooksCollection),
	}
}

// EnsureIndexes creates the lookup indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.Transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transactionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("index %s.transactionId: %w", transactionsCollection, err)
	}
	if _, err := s.Sales.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reservationId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("index %s.reservationId: %w", salesCollection, err)
	}
	return nil
}

// withTransaction runs fn in a multi-document transaction.
func (s *Store) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
