package service

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type NotificationPublisher interface {
	Publish(n *entity.Notification) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(*entity.Notification) error { return nil }

type NotificationData struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

type NotificationsResponse struct {
	Notifications []*entity.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// notificationsPerUser bounds each user's feed; the oldest entries go first.
const notificationsPerUser = 200

// NotificationFeed keeps notifications in process memory, oldest first per
// user, and hands them out newest first. Nothing here survives a restart.
type NotificationFeed struct {
	mu        sync.RWMutex
	items     map[string][]*entity.Notification
	limit     int
	publisher NotificationPublisher
}

func NewNotificationFeed(publisher NotificationPublisher) *NotificationFeed {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &NotificationFeed{
		items:     map[string][]*entity.Notification{},
		limit:     notificationsPerUser,
		publisher: publisher,
	}
}

func (f *NotificationFeed) AddNotification(data NotificationData) *entity.Notification {
	n := &entity.Notification{
		ID:        uuid.NewString(),
		UserID:    data.UserID,
		Title:     data.Title,
		Message:   data.Message,
		Type:      data.Type,
		IsRead:    false,
		Timestamp: utils.FormatEpoch(utils.NowUTC()),
	}

	f.mu.Lock()
	feed := append(f.items[n.UserID], n)
	if over := len(feed) - f.limit; over > 0 {
		clear(feed[:over])
		feed = feed[over:]
	}
	f.items[n.UserID] = feed
	f.mu.Unlock()

	out := *n
	if err := f.publisher.Publish(&out); err != nil {
		log.Warnf("failed to publish notification %s for user %s: %v", n.ID, n.UserID, err)
	}
	return &out
}

func (f *NotificationFeed) List(userID string) *NotificationsResponse {
	f.mu.RLock()
	defer f.mu.RUnlock()

	feed := f.items[userID]
	resp := &NotificationsResponse{Notifications: make([]*entity.Notification, 0, len(feed))}
	for i := len(feed) - 1; i >= 0; i-- {
		out := *feed[i]
		resp.Notifications = append(resp.Notifications, &out)
		if !out.IsRead {
			resp.UnreadCount++
		}
	}
	return resp
}

func (f *NotificationFeed) UnreadCount(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for _, n := range f.items[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (f *NotificationFeed) MarkNotificationRead(userID, id string) apierror.ErrorResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.items[userID] {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return apierror.NotFoundError
}

// MarkAllNotificationsRead returns how many notifications changed state.
func (f *NotificationFeed) MarkAllNotificationsRead(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := 0
	for _, n := range f.items[userID] {
		if !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed
}
