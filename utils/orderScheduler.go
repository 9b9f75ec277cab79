package utils

import (
	"strings"
	"time"

	"coursemart/logger"
	"coursemart/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeOrderScheduler cancels expired pending orders on the given cron
// schedule. It returns nil when the schedule is "off".
func InitializeOrderScheduler(db *gorm.DB, schedule string) (*cron.Cron, error) {
	if strings.EqualFold(strings.TrimSpace(schedule), "off") {
		logger.L().Info("[ORDER-SCHEDULER] disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { ExpireOrders(db, time.Now()) }); err != nil {
		return nil, err
	}

	c.Start()
	logger.L().Info("[ORDER-SCHEDULER] started", "schedule", schedule)
	return c, nil
}

// ExpireOrders runs one sweep.
func ExpireOrders(db *gorm.DB, now time.Time) int64 {
	n, err := services.ExpireStaleOrders(db, now)
	if err != nil {
		logger.L().Error("[ORDER-SCHEDULER] sweep failed", "error", err.Error())
		return 0
	}
	if n > 0 {
		logger.L().Info("[ORDER-SCHEDULER] cancelled expired orders", "count", n)
	}
	return n
}
