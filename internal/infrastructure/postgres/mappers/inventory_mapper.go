package mappers

import (
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
)

func ToDomainSale(model *models.SaleModel) *domain.Sale {
	return &domain.Sale{
		ID:                 model.ID,
		ReservationID:      model.ReservationID,
		VoyageID:           model.VoyageID,
		Classe:             model.Classe,
		Status:             domain.SaleStatus(model.Status),
		PaymentConfirmedAt: model.PaymentConfirmedAt,
		CancelledAt:        model.CancelledAt,
		CancelReason:       model.CancelReason,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToDomainTrip(model *models.TripModel) *domain.Trip {
	return &domain.Trip{
		ID:                model.ID,
		SeatsTakenEconomy: model.SeatsTakenEconomy,
		SeatsTakenVIP:     model.SeatsTakenVIP,
	}
}
