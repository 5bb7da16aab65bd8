package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"venue-booking/common"
	"venue-booking/inbound/form"
	"venue-booking/outbound/proxy"
)

type submitBookingFlags struct {
	values form.Values
	mode   string
}

// runSubmitBookingCmd drives the booking form against a running serve-http,
// calling /api/customers and then /api/bookings.
func runSubmitBookingCmd(ctx context.Context, flags submitBookingFlags) {
	cfg := newCfg("env")

	stopTracer := newTracer(ctx, cfg, "submit")
	defer stopTracer()

	mode := flags.mode
	if mode == "" {
		mode = cfg.GetString("form.failure_mode")
	}

	bookingForm := form.New(proxy.New(cfg), common.NewValidator(), form.FailureMode(mode))
	bookingForm.Values = flags.values

	result := bookingForm.Submit(ctx)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(string(out))

	if !result.Success {
		slog.WarnContext(ctx, "booking was not submitted", slog.String("notice", result.Notice), slog.String("redirect_to", result.RedirectTo))
		os.Exit(1)
	}
}
