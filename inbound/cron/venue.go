package cron

import (
	"context"
	"github.com/spf13/viper"
	"log/slog"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/otel"
	"venue-booking/common/vars"
	"venue-booking/model"
	"venue-booking/outbound/cms"
)

type VenueCron struct {
	Cfg *viper.Viper
	Cms *cms.CmsOutbound
}

func (in VenueCron) Start(ctx context.Context) {
	refreshTicker := time.NewTicker(in.Cfg.GetDuration("cron.venue.refresh.interval"))
	defer refreshTicker.Stop()

	in.refresh(ctx)

	slog.Info("venue cron started")

	for {
		select {
		case <-refreshTicker.C:
			in.refresh(ctx)
		case <-ctx.Done():
			slog.Info("venue cron stopped")
			return
		}
	}
}

// refresh swaps in the CMS venue list. A failed fetch keeps the last CMS list and
// only falls back to mock venues when nothing real has been loaded yet.
func (in VenueCron) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.venue.refresh.timeout"))
	defer cancel()

	ctx, span := otel.Tracer.Start(ctx, "VenueCron.refresh")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	slog.DebugContext(ctx, "refreshing venues", traceIdAttr)

	venues, pagination, err := in.Cms.ListVenues(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to list venues from cms", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)

		if current, _, mock := vars.GetVenues(); current != nil && !mock {
			return
		}

		in.useMock()
		return
	}

	if len(venues) == 0 {
		slog.InfoContext(ctx, "cms has no published venues, serving mock venues", traceIdAttr)
		in.useMock()
		return
	}

	vars.SetVenues(venues, pagination, false)

	slog.DebugContext(ctx, "venues refreshed successfully", traceIdAttr, slog.Int("count", len(venues)))
}

func (in VenueCron) useMock() {
	vars.SetVenues(constant.MockVenues, model.Pagination{
		Page:      1,
		PageSize:  len(constant.MockVenues),
		PageCount: 1,
		Total:     len(constant.MockVenues),
	}, true)
}
