package dto

import "github.com/ticketflow/backend/internal/repository"

// StatsResponse is the dashboard aggregate shape.
type StatsResponse struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByPriority   map[string]int `json:"by_priority"`
	ByDepartment map[string]int `json:"by_department"`
}

// FromStats converts repository aggregates.
func FromStats(stats *repository.TicketStats) StatsResponse {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	byPriority := make(map[string]int, len(stats.ByPriority))
	for priority, n := range stats.ByPriority {
		byPriority[string(priority)] = n
	}
	return StatsResponse{
		Total:        stats.Total,
		ByStatus:     byStatus,
		ByPriority:   byPriority,
		ByDepartment: stats.ByDepartment,
	}
}
