package cron

import (
	"fmt"
	"time"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
)

// CloseExpiredCbcsRounds moves open CBCS rounds whose closing time has
// passed to closed, so late submissions are refused without an admin
// having to watch the clock. Rounds with no closing time (stored as the
// zero time) stay open until closed manually.
func (m *CronManager) CloseExpiredCbcsRounds() {
	jobName := "close_expired_cbcs_rounds"

	result := m.db.Model(&model.CbcsConfig{}).
		Where("status = ? AND closes_at > ? AND closes_at < ?",
			model.CbcsStatusOpen, time.Unix(0, 0), time.Now()).
		Update("status", model.CbcsStatusClosed)
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("closed %d round(s)", result.RowsAffected))
}

// CleanupTokenBlacklist deletes blacklist entries whose tokens have
// expired anyway.
func (m *CronManager) CleanupTokenBlacklist() {
	jobName := "cleanup_token_blacklist"

	result := m.db.Unscoped().Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired token(s)", result.RowsAffected))
}

// CleanupOldData prunes cron logs older than 90 days
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	cutoff := time.Now().AddDate(0, 0, -90)
	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("pruned %d old log row(s)", result.RowsAffected))
}
