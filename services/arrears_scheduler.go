package services

import (
	"encoding/json"
	"fmt"

	"sekoly_go/database"
	"sekoly_go/models"
	"sekoly_go/services/notifications"
	"sekoly_go/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ArrearsScheduler walks confirmed enrollments once a month and notifies
// students whose elapsed tuition months are not fully settled.
type ArrearsScheduler struct {
	db            *gorm.DB
	schedule      *MonthlyScheduleService
	notifications *notifications.Service
	cron          *cron.Cron
}

func NewArrearsScheduler(notifService *notifications.Service) *ArrearsScheduler {
	return &ArrearsScheduler{
		db:            database.GetDB(),
		schedule:      NewMonthlyScheduleService(),
		notifications: notifService,
		cron:          cron.New(),
	}
}

// Start runs the arrears sweep on the 5th of every month at 08:00.
func (as *ArrearsScheduler) Start() {
	if _, err := as.cron.AddFunc("0 8 5 * *", func() {
		if err := as.RunOnce(); err != nil {
			logrus.WithError(err).Warn("Monthly arrears sweep failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("Failed to schedule arrears sweep")
		return
	}
	as.cron.Start()
}

// Stop cancels future sweeps. Running jobs finish.
func (as *ArrearsScheduler) Stop() {
	as.cron.Stop()
}

// RunOnce sweeps every confirmed application of the current school year and
// queues a reminder for each student with unpaid elapsed months.
func (as *ArrearsScheduler) RunOnce() error {
	var currentYear models.SchoolYear
	if err := as.db.Where("current = ?", true).First(&currentYear).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			logrus.Info("No current school year set, skipping arrears sweep")
			return nil
		}
		return err
	}

	var applications []models.EnrollmentApplication
	err := as.db.
		Where("school_year_id = ? AND status = ?", currentYear.ID, models.ApplicationConfirmed).
		Find(&applications).Error
	if err != nil {
		return fmt.Errorf("failed to load confirmed applications: %v", err)
	}

	var notified int
	for _, application := range applications {
		entries, err := as.schedule.ScheduleForApplication(application.ID)
		if err != nil {
			logrus.WithError(err).WithField("application_id", application.ID).
				Warn("Could not compute schedule during arrears sweep")
			continue
		}

		summary := SummarizeSchedule(entries)
		if summary.MonthsUnpaid == 0 {
			continue
		}

		if err := as.notify(&application, summary); err != nil {
			logrus.WithError(err).WithField("application_id", application.ID).
				Warn("Failed to notify student of arrears")
			continue
		}
		notified++
	}

	logrus.WithFields(logrus.Fields{
		"school_year": currentYear.Name,
		"swept":       len(applications),
		"notified":    notified,
	}).Info("Monthly arrears sweep completed")
	return nil
}

// notify queues the reminder; the delivery worker forwards it to the linked
// LINE account when one exists.
func (as *ArrearsScheduler) notify(application *models.EnrollmentApplication, summary ScheduleSummary) error {
	if as.notifications == nil {
		return nil
	}

	balance := utils.FormatAriary(summary.Balance)
	message := fmt.Sprintf("%d mois d'écolage impayé(s), solde dû: %s.", summary.MonthsUnpaid, balance)

	data, _ := json.Marshal(map[string]interface{}{
		"application_id": application.ID,
		"months_unpaid":  summary.MonthsUnpaid,
		"balance":        summary.Balance.String(),
	})

	_, err := as.notifications.Create(application.StudentID,
		"Rappel d'écolage", message, NotifTypeArrears, data)
	return err
}
