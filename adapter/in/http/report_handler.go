package http

import (
	"strconv"
	"time"

	"report_server/core/service/report"
	"report_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// ReportHandler handles weekly report requests.
type ReportHandler struct {
	reportService *report.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService *report.Service) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Register registers report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	reports := router.Group("/report")

	reports.Post("/", h.RequestReport)
	reports.Get("/", h.ListReports)
	reports.Get("/search/:nickname", h.SearchLatestReport)
	reports.Get("/:id", h.GetReport)
	reports.Get("/:id/document", h.GetReportDocument)
}

// RequestReportBody represents a report generation request.
type RequestReportBody struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to previous week
	EndDate   string `json:"end_date,omitempty"`
}

// RequestReport queues weekly report generation and returns 202.
func (h *ReportHandler) RequestReport(c *fiber.Ctx) error {
	var body RequestReportBody
	if err := c.BodyParser(&body); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if body.UserID == "" {
		return apperr.MissingField("user_id")
	}

	var weekStart, weekEnd *time.Time
	if body.StartDate != "" || body.EndDate != "" {
		if body.StartDate == "" || body.EndDate == "" {
			return apperr.ValidationFailed("start_date and end_date must be provided together")
		}
		start, err := time.Parse(dateLayout, body.StartDate)
		if err != nil {
			return apperr.InvalidInput("start_date", "expected YYYY-MM-DD")
		}
		end, err := time.Parse(dateLayout, body.EndDate)
		if err != nil {
			return apperr.InvalidInput("end_date", "expected YYYY-MM-DD")
		}
		weekStart, weekEnd = &start, &end
	}

	reportID, start, end, err := h.reportService.RequestReport(c.Context(), body.UserID, weekStart, weekEnd)
	if err != nil {
		return err
	}

	return AcceptedResponse(c, fiber.Map{
		"report_id":  reportID,
		"user_id":    body.UserID,
		"week_start": start.Format(dateLayout),
		"week_end":   end.Format(dateLayout),
		"status":     "processing",
	})
}

// GetReport returns a single report. Ownership is checked against the
// user_id query parameter; there is no authentication layer.
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "expected numeric report ID")
	}
	userID := c.Query("user_id")
	if userID == "" {
		return apperr.MissingField("user_id")
	}

	rpt, err := h.reportService.GetReport(c.Context(), reportID, userID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, rpt)
}

// ListReports returns a user's reports, newest first.
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return apperr.MissingField("user_id")
	}
	limit := c.QueryInt("limit", 10)

	reports, err := h.reportService.ListReports(c.Context(), userID, limit)
	if err != nil {
		return err
	}

	return SuccessResponse(c, fiber.Map{
		"reports": reports,
		"total":   len(reports),
		"limit":   limit,
	})
}

// SearchLatestReport returns the most recent completed report for a nickname.
func (h *ReportHandler) SearchLatestReport(c *fiber.Ctx) error {
	nickname := c.Params("nickname")
	if nickname == "" {
		return apperr.MissingField("nickname")
	}

	rpt, err := h.reportService.LatestReportByNickname(c.Context(), nickname)
	if err != nil {
		return err
	}

	return SuccessResponse(c, fiber.Map{
		"report_id":     rpt.ID,
		"nickname":      rpt.Nickname,
		"week_start":    rpt.WeekStart.Format(dateLayout),
		"week_end":      rpt.WeekEnd.Format(dateLayout),
		"average_score": rpt.AverageScore,
		"evaluation":    rpt.Evaluation,
		"feedback":      rpt.Feedback,
		"created_at":    rpt.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// GetReportDocument returns the document-store copy of a report.
func (h *ReportHandler) GetReportDocument(c *fiber.Ctx) error {
	reportID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "expected numeric report ID")
	}
	userID := c.Query("user_id")
	if userID == "" {
		return apperr.MissingField("user_id")
	}

	key, doc, err := h.reportService.GetReportDocument(c.Context(), reportID, userID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, fiber.Map{
		"document_key": key,
		"document":     doc,
	})
}
