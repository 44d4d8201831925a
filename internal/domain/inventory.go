package domain

import "time"

// Sale statuses and fare classes are stored with the values the booking
// application writes.
type SaleStatus string

const (
	SaleStatusPaid      SaleStatus = "Payer"
	SaleStatusCancelled SaleStatus = "Annuler"
)

const (
	FareClassEconomy = "Economie"
	FareClassVIP     = "VIP"
)

const ReleaseReasonPaymentFailed = "Paiement échoué"

type Sale struct {
	ID                 string
	ReservationID      string
	VoyageID           string
	Classe             string
	Status             SaleStatus
	PaymentConfirmedAt *time.Time
	CancelledAt        *time.Time
	CancelReason       string
	UpdatedAt          time.Time
}

type Trip struct {
	ID                string
	SeatsTakenEconomy int64
	SeatsTakenVIP     int64
}

type SeatCounts struct {
	Economy int64
	VIP     int64
}

func (c SeatCounts) Total() int64 {
	return c.Economy + c.VIP
}

// Release decrements the trip counters by counts, never below zero.
func (t *Trip) Release(counts SeatCounts) {
	t.SeatsTakenEconomy = max(0, t.SeatsTakenEconomy-counts.Economy)
	t.SeatsTakenVIP = max(0, t.SeatsTakenVIP-counts.VIP)
}

// ReleasableSales returns the sales of a reservation that still hold seats.
func ReleasableSales(sales []*Sale) []*Sale {
	out := make([]*Sale, 0, len(sales))
	for _, s := range sales {
		if s.Status == SaleStatusCancelled {
			continue
		}
		out = append(out, s)
	}
	return out
}

// AggregateReleasedSeats sums the seats held per trip and fare class.
// Cancelled sales, sales without a trip and unknown classes hold no seat.
func AggregateReleasedSeats(sales []*Sale) map[string]SeatCounts {
	seats := make(map[string]SeatCounts)
	for _, s := range ReleasableSales(sales) {
		if s.VoyageID == "" {
			continue
		}
		c := seats[s.VoyageID]
		switch s.Classe {
		case FareClassEconomy:
			c.Economy++
		case FareClassVIP:
			c.VIP++
		default:
			continue
		}
		seats[s.VoyageID] = c
	}
	return seats
}

type MarkPaidResult struct {
	Marked          int
	AlreadyPaid     int
	SkippedCanceled int
}

type ReleaseResult struct {
	SalesCancelled int
	Seats          map[string]SeatCounts
}

func (r *ReleaseResult) SeatsReleased() SeatCounts {
	var total SeatCounts
	if r == nil {
		return total
	}
	for _, c := range r.Seats {
		total.Economy += c.Economy
		total.VIP += c.VIP
	}
	return total
}
