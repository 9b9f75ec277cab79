package services

import (
	"time"

	"coursemart/models/course"
	"coursemart/models/order"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RevenueStats struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrderCount        int64           `json:"order_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// GetRevenueStats aggregates completed orders paid within [from, to].
func GetRevenueStats(db *gorm.DB, from, to time.Time) (RevenueStats, error) {
	var row struct {
		TotalRevenue decimal.Decimal
		OrderCount   int64
	}
	err := db.Model(&order.Order{}).
		Select("COALESCE(SUM(total), 0) AS total_revenue, COUNT(*) AS order_count").
		Where("payment_status = ? AND paid_at BETWEEN ? AND ?", order.PaymentCompleted, from, to).
		Scan(&row).Error
	if err != nil {
		return RevenueStats{}, errors.Wrap(err, "revenue stats")
	}

	stats := RevenueStats{TotalRevenue: row.TotalRevenue, OrderCount: row.OrderCount, AverageOrderValue: decimal.Zero}
	if row.OrderCount > 0 {
		stats.AverageOrderValue = row.TotalRevenue.Div(decimal.NewFromInt(row.OrderCount)).Round(2)
	}
	return stats, nil
}

type CertificateStats struct {
	Count                 int64   `json:"count"`
	AverageScore          float64 `json:"average_score"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// GetCertificateStats aggregates active certificates issued within [from, to].
func GetCertificateStats(db *gorm.DB, from, to time.Time) (CertificateStats, error) {
	var stats CertificateStats
	err := db.Model(&course.Certificate{}).
		Select("COUNT(*) AS count, COALESCE(AVG(score), 0) AS average_score, COALESCE(AVG(completion_rate), 0) AS average_completion_rate").
		Where("state = ? AND issued_date BETWEEN ? AND ?", course.StateIssued, from, to).
		Scan(&stats).Error
	if err != nil {
		return CertificateStats{}, errors.Wrap(err, "certificate stats")
	}
	return stats, nil
}
