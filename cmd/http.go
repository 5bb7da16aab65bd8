package cmd

import (
	"context"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log"
	"log/slog"
	"net/http"
	"time"
	"venue-booking/common"
	inboundCron "venue-booking/inbound/cron"
	inboundHttp "venue-booking/inbound/http"
	"venue-booking/outbound/ledger"
)

func runHttpServerCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startProfiling(cfg, "http")
	defer stopProfiling()

	stopTracer := newTracer(ctx, cfg, "http")
	defer stopTracer()

	validate := common.NewValidator()
	cmsOutbound := newCms(cfg)

	db := newDb(cfg)
	defer db.Close()

	cacheClient := newRedis(cfg)
	defer cacheClient.Close()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	newQueueStream(ctx, js)

	querier := ledger.New(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		slog.DebugContext(r.Context(), "health check")
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	inboundHttp.RegisterCustomerHttp(mux, cmsOutbound, validate)
	inboundHttp.RegisterBookingHttp(mux, cmsOutbound, validate)
	inboundHttp.RegisterContactHttp(mux, js, validate)
	inboundHttp.RegisterBookingRequestHttp(mux, cfg, cmsOutbound, querier, cacheClient, js, validate)
	inboundHttp.RegisterVenueHttp(mux, cmsOutbound)
	inboundHttp.RegisterCalendarHttp(mux)

	trustedProxies, err := inboundHttp.ParseTrustedProxies(cfg.GetStringSlice("ratelimit.trusted_proxies"))
	if err != nil {
		log.Fatalln("invalid ratelimit.trusted_proxies:", err)
	}

	requestTimeout := inboundHttp.RequestTimeout(cfg)
	timeoutMiddleware := inboundHttp.TimeoutMiddleware(requestTimeout)
	rateLimitMiddleware := inboundHttp.RateLimitMiddleware(cacheClient, cfg.GetInt("ratelimit.limit"), cfg.GetDuration("ratelimit.window"), trustedProxies)

	venueCron := &inboundCron.VenueCron{
		Cfg: cfg,
		Cms: cmsOutbound,
	}

	// MetricsMiddleware sits directly on the mux so it sees the matched pattern.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.GetInt("server.port")),
		Handler:           inboundHttp.CorsMiddleware(timeoutMiddleware(rateLimitMiddleware(inboundHttp.MetricsMiddleware(mux)))),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln("unable to start server", err)
		}
	}()

	slog.Info("http server started", slog.String("addr", srv.Addr))

	go func() {
		venueCron.Start(ctx)
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		log.Fatalln("unable to shutdown server", err)
	}

	slog.Info("http server stopped")
}
