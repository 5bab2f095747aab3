package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/metrics"
	"walletpalz/internal/models"
	"walletpalz/internal/realtime"
)

// DefaultNotificationLimit is how many notifications a list returns by default.
const DefaultNotificationLimit = 10

// notificationService handles reading and clearing notifications. Every
// change is published to the realtime hub.
type notificationService struct {
	db  *gorm.DB
	hub realtime.Publisher
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB, hub realtime.Publisher) NotificationServicer {
	return &notificationService{db: db, hub: hub}
}

// ListNotifications returns the newest notifications and the unread count.
func (s *notificationService) ListNotifications(ctx context.Context, userID string, limit int) (*NotificationList, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultNotificationLimit
	}
	db := s.db.WithContext(ctx)

	var list NotificationList
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list.Notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if list.Notifications == nil {
		list.Notifications = []models.Notification{}
	}

	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&list.UnreadCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &list, nil
}

// MarkAsRead flags one notification as read.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	db := s.db.WithContext(ctx)

	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if n.Read {
		return &n, nil
	}

	old := n
	if err := db.Model(&n).Update("read", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.Event{Event: realtime.EventUpdate, New: &n, Old: &old})
	return &n, nil
}

// MarkAllAsRead flags every unread notification as read and returns how many changed.
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	db := s.db.WithContext(ctx)

	var unread []models.Notification
	if err := db.Where("user_id = ? AND read = ?", userID, false).Find(&unread).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(unread) == 0 {
		return 0, nil
	}

	res := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	for i := range unread {
		old := unread[i]
		updated := unread[i]
		updated.Read = true
		s.publish(userID, realtime.Event{Event: realtime.EventUpdate, New: &updated, Old: &old})
	}
	return res.RowsAffected, nil
}

// ClearAll permanently deletes every notification of the user.
func (s *notificationService) ClearAll(ctx context.Context, userID string) (int64, error) {
	db := s.db.WithContext(ctx)

	var existing []models.Notification
	if err := db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := db.Unscoped().Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	for i := range existing {
		s.publish(userID, realtime.Event{Event: realtime.EventDelete, Old: &existing[i]})
	}
	return res.RowsAffected, nil
}

func (s *notificationService) publish(userID string, ev realtime.Event) {
	if s.hub != nil {
		s.hub.Publish(userID, ev)
	}
}

// insertNotification stores n. When unique is set an existing row with the
// same dedup key wins and n is not stored; the result reports whether a row
// was written.
func insertNotification(ctx context.Context, db *gorm.DB, hub realtime.Publisher, n *models.Notification, unique bool) (bool, error) {
	q := db.WithContext(ctx)
	if unique {
		q = q.Clauses(clause.OnConflict{DoNothing: true})
	}

	res := q.Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		metrics.NotificationsDeduplicated.WithLabelValues(string(n.Type)).Inc()
		return false, nil
	}

	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	if hub != nil {
		hub.Publish(n.UserID, realtime.Event{Event: realtime.EventInsert, New: n})
	}
	return true, nil
}
