package event

import (
	"context"
	"encoding/json"
	"github.com/oklog/ulid/v2"
	"log/slog"
	"time"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/model"
)

type EmailEvent struct {
	EmailOutbound contract.EmailSender
	Timeout       time.Duration
}

func (in EmailEvent) SendEmailHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.SendEmailEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "send email event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	traceIdAttr := slog.String(constant.LogFieldTraceId, ulid.Make().String())
	toAttr := slog.String("to", req.To)

	if req.To == "" {
		slog.WarnContext(ctx, "send email event without recipient", slog.String("subject", req.Subject), traceIdAttr)
		return nil
	}

	err = in.EmailOutbound.Send([]string{req.To}, req.Subject, req.Body)
	if err != nil {
		slog.ErrorContext(ctx, "send email event error", slog.Any(constant.LogFieldErr, err), toAttr, traceIdAttr)
		return err
	}

	slog.DebugContext(ctx, "send email event success", toAttr, traceIdAttr)

	return nil
}
