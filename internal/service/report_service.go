package service

import (
	"context"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// ReportService aggregates ticket counts for dashboards and reports.
type ReportService struct {
	tickets repository.TicketRepository
}

// NewReportService wires the service.
func NewReportService(tickets repository.TicketRepository) *ReportService {
	return &ReportService{tickets: tickets}
}

// Dashboard returns global ticket counts grouped by status, priority and
// department. Counts are global even for restricted roles; only the ticket
// lists themselves are ownership-scoped.
func (s *ReportService) Dashboard(ctx context.Context, actor *auth.Principal) (*repository.TicketStats, error) {
	if err := auth.Require(actor, auth.PermReadDashboard); err != nil {
		return nil, err
	}
	stats, err := s.tickets.Stats(ctx)
	return stats, util.MapError(err)
}

// TicketReport returns the same aggregates behind the stricter reports
// permission, for roles with reporting access.
func (s *ReportService) TicketReport(ctx context.Context, actor *auth.Principal) (*repository.TicketStats, error) {
	if err := auth.Require(actor, auth.PermReadReports); err != nil {
		return nil, err
	}
	stats, err := s.tickets.Stats(ctx)
	return stats, util.MapError(err)
}
