package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultInventoryRepository struct {
	db *gorm.DB
}

func NewDefaultInventoryRepository(db *gorm.DB) *DefaultInventoryRepository {
	return &DefaultInventoryRepository{db: db}
}

func (r *DefaultInventoryRepository) MarkReservationPaid(ctx context.Context, reservationID string, at time.Time) (*domain.MarkPaidResult, error) {
	result := &domain.MarkPaidResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sales, err := lockSales(tx, reservationID)
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

		if err := tx.Model(&models.SaleModel{}).
			Where("id IN ?", pending).
			Updates(map[string]any{
				"status":               string(domain.SaleStatusPaid),
				"payment_confirmed_at": at,
				"updated_at":           at,
			}).Error; err != nil {
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

// ReleaseReservation cancels the held sales and gives their seats back in one
// transaction. Trip rows are locked in id order.
func (r *DefaultInventoryRepository) ReleaseReservation(ctx context.Context, reservationID, reason string, at time.Time) (*domain.ReleaseResult, error) {
	result := &domain.ReleaseResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sales, err := lockSales(tx, reservationID)
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
			if err := releaseTrip(tx, id, result.Seats[id]); err != nil {
				return err
			}
		}

		ids := make([]string, 0, len(held))
		for _, sale := range held {
			ids = append(ids, sale.ID)
		}
		if err := tx.Model(&models.SaleModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":        string(domain.SaleStatusCancelled),
				"cancelled_at":  at,
				"cancel_reason": reason,
				"updated_at":    at,
			}).Error; err != nil {
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

func releaseTrip(tx *gorm.DB, tripID string, counts domain.SeatCounts) error {
	var tripModel models.TripModel
	err := forUpdate(tx).Where("id = ?", tripID).First(&tripModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	trip := mappers.ToDomainTrip(&tripModel)
	trip.Release(counts)
	return tx.Model(&models.TripModel{}).
		Where("id = ?", tripID).
		Updates(map[string]any{
			"seats_taken_economy": trip.SeatsTakenEconomy,
			"seats_taken_vip":     trip.SeatsTakenVIP,
		}).Error
}

func lockSales(tx *gorm.DB, reservationID string) ([]*domain.Sale, error) {
	var saleModels []models.SaleModel
	if err := forUpdate(tx).
		Where("reservation_id = ?", reservationID).
		Order("id").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]*domain.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = mappers.ToDomainSale(&saleModels[i])
	}
	return sales, nil
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
