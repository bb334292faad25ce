package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"academia_go/config"
	"academia_go/database"
	"academia_go/services/attendance"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReconcilerScheduler runs the attendance reconciler on a cron schedule and
// notifies admins of each backfill.
type ReconcilerScheduler struct {
	cron          *cron.Cron
	reconciler    *attendance.Reconciler
	notifications *NotificationService
}

func NewReconcilerScheduler() *ReconcilerScheduler {
	return &ReconcilerScheduler{
		cron: cron.New(),
		reconciler: attendance.NewReconciler(
			attendance.NewGormDirectory(database.DB),
			attendance.NewGormStore(database.DB),
		),
		notifications: NewNotificationService(),
	}
}

// Start registers the cron entry and launches the scheduler. Disabled via
// RECONCILER_ENABLED=false for deployments that trigger runs manually.
func (rs *ReconcilerScheduler) Start() error {
	if !config.AppConfig.ReconcilerEnabled {
		logrus.Info("Attendance reconciler scheduler disabled by configuration")
		return nil
	}

	spec := config.AppConfig.ReconcilerCronSpec
	_, err := rs.cron.AddFunc(spec, func() {
		if _, err := rs.RunOnce(context.Background()); err != nil {
			logrus.WithError(err).Error("Scheduled attendance reconciliation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconciler cron spec %q: %v", spec, err)
	}

	rs.cron.Start()
	logrus.WithField("cron", spec).Info("Attendance reconciler scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running pass to finish.
func (rs *ReconcilerScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes a single reconciliation pass and notifies admins when
// anything was backfilled or any row failed. Manual triggers from the API go
// through here too.
func (rs *ReconcilerScheduler) RunOnce(ctx context.Context) (attendance.Result, error) {
	started := time.Now()
	result, err := rs.reconciler.Run(ctx, started)
	if err != nil {
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"sessions_filled": len(result.Details),
		"rows_succeeded":  result.Rows.Succeeded,
		"rows_failed":     result.Rows.Failed,
		"duration":        time.Since(started).String(),
	}).Info("Attendance reconciliation pass completed")

	if len(result.Details) == 0 && result.Rows.Failed == 0 {
		return result, nil
	}

	title := "Asistencia completada automáticamente"
	notifType := "info"
	if result.Rows.Failed > 0 {
		title = "Asistencia automática con errores"
		notifType = "warning"
	}

	if err := rs.notifications.NotifyAdmins(title, reconcileSummary(result), notifType); err != nil {
		logrus.WithError(err).Error("Failed to notify admins about reconciliation")
	}

	return result, nil
}

func reconcileSummary(result attendance.Result) string {
	var b strings.Builder
	b.WriteString(result.Message)
	for _, fill := range result.Details {
		b.WriteString(fmt.Sprintf("\n- %s (%s): %d estudiante(s)",
			fill.SubjectName, fill.TeacherName, fill.StudentCount))
	}
	if result.Rows.Failed > 0 {
		b.WriteString(fmt.Sprintf("\nFilas con error: %d", result.Rows.Failed))
	}
	return b.String()
}
