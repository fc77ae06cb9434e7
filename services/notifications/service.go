// Package notifications persists user notifications and fans them out through
// a Redis queue to external channels such as LINE.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sekoly_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const queueKey = "notifications:queue"

// Pusher delivers a notification to an external channel. Implementations must
// tolerate users with no linked channel.
type Pusher interface {
	Push(n *models.Notification, user *models.User) error
}

// Service stores notifications in the database and enqueues them for
// asynchronous delivery.
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	pusher Pusher
}

func NewService(db *gorm.DB, redisClient *redis.Client, pusher Pusher) *Service {
	return &Service{db: db, redis: redisClient, pusher: pusher}
}

// Create persists a notification and queues it for delivery. The database row
// is the source of truth; queueing failures are logged and not returned.
func (s *Service) Create(userID uint, title, message, notifType string, data models.JSON) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
		Data:    data,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, err
	}

	s.enqueue(notification)
	return notification, nil
}

func (s *Service) enqueue(notification *models.Notification) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal notification for queue")
		return
	}
	if err := s.redis.RPush(context.Background(), queueKey, payload).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to enqueue notification")
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *Service) ListForUser(userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("`read` = ?", false)
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkRead marks a single notification as read for its owner.
func (s *Service) MarkRead(userID, notificationID uint) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (s *Service) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

// StartWorker drains the delivery queue until ctx is cancelled. Each queued
// notification is pushed through the configured Pusher; delivery failures are
// logged, the database row already exists either way.
func (s *Service) StartWorker(ctx context.Context) {
	if s.redis == nil {
		logrus.Warn("Redis not available, notification delivery worker disabled")
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			result, err := s.redis.BLPop(ctx, 5*time.Second, queueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				logrus.WithError(err).Warn("Notification queue read failed")
				time.Sleep(time.Second)
				continue
			}
			if len(result) < 2 {
				continue
			}

			var notification models.Notification
			if err := json.Unmarshal([]byte(result[1]), &notification); err != nil {
				logrus.WithError(err).Error("Failed to unmarshal queued notification")
				continue
			}
			s.deliver(&notification)
		}
	}()
}

func (s *Service) deliver(notification *models.Notification) {
	if s.pusher == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, notification.UserID).Error; err != nil {
		logrus.WithError(err).WithField("user_id", notification.UserID).
			Warn("Notification recipient not found, skipping delivery")
		return
	}

	if err := s.pusher.Push(notification, &user); err != nil {
		logrus.WithError(err).WithField("notification_id", notification.ID).
			Warn("External notification delivery failed")
	}
}
