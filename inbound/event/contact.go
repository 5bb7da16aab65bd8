package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/common/otel"
	"venue-booking/model"
)

type ContactEvent struct {
	Publisher contract.Publisher

	// FallbackEmail receives enquiries for events without a manager address.
	FallbackEmail string
	Timeout       time.Duration
}

func (in ContactEvent) ReceivedHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.ContactReceivedEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "contact received event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	ctx, span := otel.Tracer.Start(ctx, "ContactEvent.ReceivedHandler")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	reqAttr := slog.Any(constant.LogFieldPayload, req)

	event, _ := findEvent(req.EventId)

	to := event.ManagerEmail
	managerName := event.ManagerName
	if to == "" {
		to = in.FallbackEmail
	}
	if managerName == "" {
		managerName = "Events Team"
	}

	if to == "" {
		slog.WarnContext(ctx, "no recipient for event enquiry, dropping", reqAttr, traceIdAttr)
		return nil
	}

	title := event.Title
	if title == "" {
		title = fmt.Sprintf("Event #%s", req.EventId)
	}

	sendEmailReq := model.SendEmailEventMessage{
		To:      to,
		Subject: "New enquiry: " + title,
		Body: fmt.Sprintf(constant.EmailContactNotificationTemplate,
			managerName,
			title,
			req.Name,
			req.Email,
			req.Message,
		),
	}

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectSendEmail, sendEmailReq)
	if err != nil {
		slog.ErrorContext(ctx, "contact received event publish error", slog.Any(constant.LogFieldErr, err), reqAttr, traceIdAttr)
		common.UtilSpanError(span, err)
		return err
	}

	slog.DebugContext(ctx, "contact received event publish success", reqAttr, traceIdAttr)

	return nil
}

func findEvent(id string) (model.CalendarEvent, bool) {
	for _, event := range constant.DemoEvents {
		if fmt.Sprint(event.Id) == id {
			return event, true
		}
	}
	return model.CalendarEvent{}, false
}
