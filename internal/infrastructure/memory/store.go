// Package memory is a process-local implementation of the persistence ports.
// It backs sandbox runs and the use-case tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	secrets      map[string]domain.Secret
	transactions map[string]domain.PaymentTransaction
	sales        map[string]domain.Sale
	trips        map[string]domain.Trip
	deliveries   []domain.WebhookDelivery
}

func NewStore() *Store {
	return &Store{
		secrets:      make(map[string]domain.Secret),
		transactions: make(map[string]domain.PaymentTransaction),
		sales:        make(map[string]domain.Sale),
		trips:        make(map[string]domain.Trip),
	}
}

func (s *Store) GetSecret(ctx context.Context, accountCode string) (*domain.Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.secrets[accountCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &secret, nil
}

func (s *Store) SaveSecret(ctx context.Context, secret *domain.Secret) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[secret.AccountCode] = *secret
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[tx.TransactionID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.TransactionID)
	}
	s.transactions[tx.TransactionID] = *tx
	return nil
}

func (s *Store) GetTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tx, nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, transactionID string, upd domain.TransactionStatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[transactionID]
	if !ok {
		return domain.ErrNotFound
	}
	tx.Status = upd.Status
	if upd.Operator != "" {
		tx.Operator = upd.Operator
	}
	if upd.WebhookReceivedAt != nil {
		at := *upd.WebhookReceivedAt
		tx.WebhookReceivedAt = &at
	}
	tx.UpdatedAt = upd.UpdatedAt
	s.transactions[transactionID] = tx
	return nil
}

func (s *Store) MarkReservationPaid(ctx context.Context, reservationID string, at time.Time) (*domain.MarkPaidResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := &domain.MarkPaidResult{}
	for id, sale := range s.sales {
		if sale.ReservationID != reservationID {
			continue
		}
		switch sale.Status {
		case domain.SaleStatusPaid:
			result.AlreadyPaid++
		case domain.SaleStatusCancelled:
			result.SkippedCanceled++
		default:
			confirmed := at
			sale.Status = domain.SaleStatusPaid
			sale.PaymentConfirmedAt = &confirmed
			sale.UpdatedAt = at
			s.sales[id] = sale
			result.Marked++
		}
	}
	return result, nil
}

func (s *Store) ReleaseReservation(ctx context.Context, reservationID, reason string, at time.Time) (*domain.ReleaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var held []*domain.Sale
	for _, sale := range s.sales {
		if sale.ReservationID == reservationID && sale.Status != domain.SaleStatusCancelled {
			sale := sale
			held = append(held, &sale)
		}
	}
	result := &domain.ReleaseResult{Seats: domain.AggregateReleasedSeats(held)}
	if len(held) == 0 {
		return result, nil
	}

	for tripID, counts := range result.Seats {
		trip, ok := s.trips[tripID]
		if !ok {
			continue
		}
		trip.Release(counts)
		s.trips[tripID] = trip
	}
	for _, sale := range held {
		cancelled := at
		sale.Status = domain.SaleStatusCancelled
		sale.CancelledAt = &cancelled
		sale.CancelReason = reason
		sale.UpdatedAt = at
		s.sales[sale.ID] = *sale
	}
	result.SalesCancelled = len(held)
	return result, nil
}

func (s *Store) SaveWebhookDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, *delivery)
	return nil
}

// PutSale and PutTrip seed the booking collections.
func (s *Store) PutSale(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[sale.ID] = sale
}

func (s *Store) PutTrip(trip domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[trip.ID] = trip
}

func (s *Store) Trip(id string) (domain.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[id]
	return trip, ok
}

// SalesByReservation returns the sales of a reservation ordered by id.
func (s *Store) SalesByReservation(reservationID string) []domain.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Sale
	for _, sale := range s.sales {
		if sale.ReservationID == reservationID {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Store) WebhookDeliveries() []domain.WebhookDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WebhookDelivery(nil), s.deliveries...)
}
