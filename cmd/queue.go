package cmd

import (
	"context"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"log"
	"time"
	"venue-booking/common/constant"
	internalJs "venue-booking/common/jetstream"
	inboundCron "venue-booking/inbound/cron"
	"venue-booking/inbound/event"
	emailOutbound "venue-booking/outbound/email"
	"venue-booking/outbound/ledger"
)

func runQueueBookingCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startProfiling(cfg, "booking")
	defer stopProfiling()

	stopTracer := newTracer(ctx, cfg, "queue-booking")
	defer stopTracer()

	cmsOutbound := newCms(cfg)

	db := newDb(cfg)
	defer db.Close()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := newQueueStream(ctx, js)

	querier := ledger.New(db)

	bookingEvent := event.BookingEvent{
		Cms:            cmsOutbound,
		Querier:        querier,
		Publisher:      js,
		PriceFormatter: message.NewPrinter(language.AmericanEnglish),
		TimeNow:        time.Now,
		Timeout:        cfg.GetDuration("queue.booking.timeout"),
	}

	reconcileCron := inboundCron.ReconcileCron{
		Cfg:       cfg,
		Querier:   querier,
		Publisher: js,
		TimeNow:   time.Now,
	}

	go func() {
		reconcileCron.Start(ctx)
	}()

	consume(ctx, cfg, st, "booking", constant.BookingWildcard, map[string]internalJs.Handler{
		constant.SubjectBookingCreated:            bookingEvent.CreatedHandler,
		constant.SubjectBookingCompensateCustomer: bookingEvent.CompensateCustomerHandler,
	})
}

func runQueueContactCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startProfiling(cfg, "contact")
	defer stopProfiling()

	stopTracer := newTracer(ctx, cfg, "queue-contact")
	defer stopTracer()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := newQueueStream(ctx, js)

	contactEvent := event.ContactEvent{
		Publisher:     js,
		FallbackEmail: cfg.GetString("contact.manager_email"),
		Timeout:       cfg.GetDuration("queue.contact.timeout"),
	}

	consume(ctx, cfg, st, "contact", constant.ContactWildcard, map[string]internalJs.Handler{
		constant.SubjectContactReceived: contactEvent.ReceivedHandler,
	})
}

func runQueueEmailCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startProfiling(cfg, "email")
	defer stopProfiling()

	stopTracer := newTracer(ctx, cfg, "queue-email")
	defer stopTracer()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := newQueueStream(ctx, js)

	outbound := &emailOutbound.EmailOutbound{Cfg: cfg}
	outbound.Init()

	emailEvent := event.EmailEvent{
		EmailOutbound: outbound,
		Timeout:       cfg.GetDuration("queue.email.timeout"),
	}

	consume(ctx, cfg, st, "email", constant.EmailWildcard, map[string]internalJs.Handler{
		constant.SubjectSendEmail: emailEvent.SendEmailHandler,
	})
}

// consume blocks until ctx is done. Consumer settings come from queue.<name>.*.
func consume(ctx context.Context, cfg *viper.Viper, st jetstream.Stream, name, filter string, handlers map[string]internalJs.Handler) {
	nakDelay := cfg.GetDuration("queue." + name + ".nak_delay")
	if nakDelay <= 0 {
		nakDelay = time.Second
	}

	err := internalJs.Consume(ctx, st, internalJs.ConsumerConfig{
		Durable:       "consumer:" + name,
		FilterSubject: filter,
		MaxDeliver:    cfg.GetInt("queue." + name + ".max_deliver"),
		AckWait:       cfg.GetDuration("queue." + name + ".ack_wait"),
		NakDelay:      nakDelay,
	}, handlers)
	if err != nil {
		log.Fatalln("failed to start consumer", err)
	}
}
