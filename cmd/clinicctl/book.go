package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/wolfman30/clinic-booking/internal/booking"
	"github.com/wolfman30/clinic-booking/internal/clinic"
)

var apiFlag = &cli.StringFlag{
	Name:   "api",
	Usage:  "Base URL of the booking API",
	Value:  "http://localhost:3001",
	EnvVar: "CLINIC_API_URL",
}

var SlotsCmd = cli.Command{
	Name:  "slots",
	Usage: "Lists the free slots of a day",
	Flags: []cli.Flag{
		apiFlag,
		&cli.StringFlag{
			Name:  "date",
			Usage: "Day to query, YYYY-MM-DD",
		},
	},
	Action: listSlots,
}

var BookCmd = cli.Command{
	Name:  "book",
	Usage: "Books an appointment through the API",
	Flags: []cli.Flag{
		apiFlag,
		&cli.StringFlag{Name: "date", Usage: "Day, YYYY-MM-DD"},
		&cli.StringFlag{Name: "time", Usage: "Slot label, e.g. \"09:00 AM\""},
		&cli.StringFlag{Name: "name", Usage: "Patient name"},
		&cli.StringFlag{Name: "email", Usage: "Patient email"},
		&cli.StringFlag{Name: "phone", Usage: "Patient phone"},
		&cli.StringFlag{Name: "service", Usage: "Requested service"},
		&cli.BoolFlag{Name: "video", Usage: "Request a video consultation"},
		&cli.DurationFlag{Name: "timeout", Usage: "Request timeout", Value: 30 * time.Second},
	},
	Action: bookAppointment,
}

func listSlots(c *cli.Context) error {
	date := c.String("date")
	if date == "" {
		return errors.New("--date is required")
	}
	client := booking.NewAPIClient(c.String("api"), nil)
	result, err := client.AvailableSlots(context.Background(), date)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if result.FailOpen {
		fmt.Fprintln(out, "calendar unavailable; showing the full roster")
	}
	if len(result.Slots) == 0 {
		fmt.Fprintf(out, "No hay horarios disponibles para %s\n", result.Date)
		return nil
	}
	for _, slot := range result.Slots {
		fmt.Fprintln(out, slot)
	}
	return nil
}

func bookAppointment(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	profile, err := clinic.LoadProfile(cfg.SiteProfilePath)
	if err != nil {
		return err
	}
	loc, err := profile.Location()
	if err != nil {
		return err
	}

	flow := booking.NewFlow(booking.NewAPIClient(c.String("api"), nil), profile.Slots).
		WithClock(func() time.Time { return time.Now().In(loc) })
	if err := flow.ChooseDate(c.String("date")); err != nil {
		return err
	}
	if err := flow.LoadSlots(ctx); err != nil {
		return err
	}
	if flow.FailOpen() {
		fmt.Fprintln(c.App.Writer, "calendar unavailable; the slot could not be checked against existing appointments")
	}
	if err := flow.SelectSlot(c.String("time")); err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(flow.Slots(), ", "))
	}
	contact := booking.Contact{
		Name:  c.String("name"),
		Email: c.String("email"),
		Phone: c.String("phone"),
	}
	if err := flow.EnterDetails(contact, c.String("service"), c.Bool("video")); err != nil {
		return err
	}
	if err := flow.Submit(ctx); err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return fmt.Errorf("booking failed, it can be retried: %w", err)
	}

	confirmation := flow.Confirmation()
	fmt.Fprintf(c.App.Writer, "Cita confirmada %s: %s a las %s, confirmación enviada a %s\n",
		confirmation.Reference, confirmation.DateDisplay, flow.Slot(), confirmation.Email)
	return nil
}
