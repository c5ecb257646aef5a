package worker

import (
	"context"

	"github.com/rs/zerolog"
)

// Handler routes stream messages to their processor.
type Handler struct {
	reportProcessor *ReportProcessor
	log             zerolog.Logger
}

func NewHandler(reportProcessor *ReportProcessor, log zerolog.Logger) *Handler {
	return &Handler{
		reportProcessor: reportProcessor,
		log:             log,
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	switch msg.Type {
	case JobReportGenerate:
		return h.reportProcessor.ProcessGenerate(ctx, msg)
	default:
		h.log.Warn().Str("type", msg.Type).Str("id", msg.ID).Msg("unknown job type")
		return nil
	}
}
