package cmd

import (
	"context"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func Start() {
	cfg := newCfg("env")
	slog.SetLogLoggerLevel(slog.Level(cfg.GetInt("log.level")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var submitFlags submitBookingFlags

	submitCmd := &cobra.Command{
		Use:   "submit-booking",
		Short: "Submit the booking form against a running HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			runSubmitBookingCmd(ctx, submitFlags)
		},
	}
	submitCmd.Flags().StringVar(&submitFlags.values.Name, "name", "", "customer name")
	submitCmd.Flags().StringVar(&submitFlags.values.Email, "email", "", "customer email")
	submitCmd.Flags().StringVar(&submitFlags.values.PhoneNumber, "phone", "", "customer phone number")
	submitCmd.Flags().StringVar(&submitFlags.values.Notes, "notes", "", "booking notes")
	submitCmd.Flags().BoolVar(&submitFlags.values.Terms, "terms", false, "accept the terms and conditions")
	submitCmd.Flags().StringVar(&submitFlags.values.VenueId, "venue", "", "venue id")
	submitCmd.Flags().StringVar(&submitFlags.values.BookingDate, "date", "", "booking date, YYYY-MM-DD")
	submitCmd.Flags().StringVar(&submitFlags.mode, "failure-mode", "", "redirect or inline, defaults to form.failure_mode")

	rootCmd := &cobra.Command{}
	cmd := []*cobra.Command{
		{
			Use:   "serve-http",
			Short: "Run HTTP server",
			Run: func(cmd *cobra.Command, args []string) {
				runHttpServerCmd(ctx)
			},
		},
		{
			Use:   "serve-queue:booking",
			Short: "Run queue booking server",
			Run: func(cmd *cobra.Command, args []string) {
				runQueueBookingCmd(ctx)
			},
		},
		{
			Use:   "serve-queue:contact",
			Short: "Run queue contact server",
			Run: func(cmd *cobra.Command, args []string) {
				runQueueContactCmd(ctx)
			},
		},
		{
			Use:   "serve-queue:email",
			Short: "Run queue email server",
			Run: func(cmd *cobra.Command, args []string) {
				runQueueEmailCmd(ctx)
			},
		},
		{
			Use:   "seed-venues",
			Short: "Create the mock venues in the CMS",
			Run: func(cmd *cobra.Command, args []string) {
				runSeedVenuesCmd(ctx)
			},
		},
		submitCmd,
		{
			Use:   "dev",
			Short: "Run HTTP server and every queue server in one process, for testing purpose",
			Run: func(cmd *cobra.Command, args []string) {
				g, gctx := errgroup.WithContext(ctx)
				for _, run := range []func(context.Context){
					runHttpServerCmd,
					runQueueBookingCmd,
					runQueueContactCmd,
					runQueueEmailCmd,
				} {
					g.Go(func() error {
						run(gctx)
						return nil
					})
				}

				if err := g.Wait(); err != nil {
					log.Fatalln(err)
				}
			},
		},
	}

	rootCmd.AddCommand(cmd...)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
