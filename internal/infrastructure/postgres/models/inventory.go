package models

import "time"

// SaleModel and TripModel map the booking application's tables. The relay
// only reads them and applies the payment compensations.
type SaleModel struct {
	ID                 string `gorm:"primaryKey"`
	ReservationID      string `gorm:"index;not null"`
	VoyageID           string
	Classe             string
	Status             string `gorm:"not null;default:''"`
	PaymentConfirmedAt *time.Time
	CancelledAt        *time.Time
	CancelReason       string
	UpdatedAt          time.Time
}

func (SaleModel) TableName() string {
	return "ventes"
}

type TripModel struct {
	ID                string `gorm:"primaryKey"`
	SeatsTakenEconomy int64  `gorm:"not null;default:0"`
	SeatsTakenVIP     int64  `gorm:"column:seats_taken_vip;not null;default:0"`
}

func (TripModel) TableName() string {
	return "voyages"
}
