package dto

import (
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// GetMetricsParams defines query parameters for retrieving usage metrics.
type GetMetricsParams struct {
	AssocType string `form:"assocType" binding:"required,oneof=ISSUE SUBMISSION"`
	AssocID   string `form:"assocID" binding:"required"`
	From      string `form:"from" binding:"required,datetime=2006-01-02"`
	To        string `form:"to" binding:"required,datetime=2006-01-02"`
}

// MetricResponse defines one compiled daily usage count.
type MetricResponse struct {
	Day    string `json:"day"` // YYYYMMDD
	Metric int64  `json:"metric"`
}

// GetMetricsResponse wraps the metric rows of one entity.
type GetMetricsResponse struct {
	AssocType string           `json:"assocType"`
	AssocID   string           `json:"assocID"`
	Metrics   []MetricResponse `json:"metrics"`
}

// ToGetMetricsResponse converts metric rows to DTO.
func ToGetMetricsResponse(assocType domain.AssocType, assocID string, rows []domain.MetricRow) GetMetricsResponse {
	metrics := make([]MetricResponse, len(rows))
	for i, r := range rows {
		metrics[i] = MetricResponse{Day: r.Day, Metric: r.Metric}
	}
	return GetMetricsResponse{
		AssocType: string(assocType),
		AssocID:   assocID,
		Metrics:   metrics,
	}
}

// EnqueueStatsJobResponse reports the load batch enqueued for compilation.
type EnqueueStatsJobResponse struct {
	LoadID string `json:"loadId"`
}
