package booking

import (
	"context"

	"github.com/wolfman30/clinic-booking/internal/availability"
)

// LocalBackend runs the flow against in-process services.
type LocalBackend struct {
	Availability *availability.Service
	Booking      *Service
}

func (b LocalBackend) AvailableSlots(ctx context.Context, date string) (availability.Result, error) {
	day, err := b.Availability.ParseDay(date)
	if err != nil {
		return availability.Result{}, err
	}
	return b.Availability.ForDay(ctx, day)
}

func (b LocalBackend) Confirm(ctx context.Context, req Request) (*Confirmation, error) {
	return b.Booking.Confirm(ctx, req)
}

var _ Backend = LocalBackend{}
