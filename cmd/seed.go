package cmd

import (
	"context"
	"log"
	"log/slog"
	"venue-booking/common/constant"
)

func runSeedVenuesCmd(ctx context.Context) {
	cfg := newCfg("env")

	cmsOutbound := newCms(cfg)

	created := 0
	for _, venue := range constant.MockVenues {
		id, err := cmsOutbound.CreateVenue(ctx, venue)
		if err != nil {
			slog.ErrorContext(ctx, "failed to seed venue", slog.String("slug", venue.Slug), slog.Any(constant.LogFieldErr, err))
			continue
		}

		created++
		slog.InfoContext(ctx, "venue seeded", slog.String("slug", venue.Slug), slog.String("id", id))
	}

	if created == 0 {
		log.Fatalln("no venue was seeded")
	}

	slog.InfoContext(ctx, "seed venues done", slog.Int("created", created), slog.Int("total", len(constant.MockVenues)))
}
