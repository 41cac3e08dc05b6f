package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationStatus marks a toast as a success or failure outcome.
type NotificationStatus string

const (
	StatusSuccess NotificationStatus = "success"
	StatusError   NotificationStatus = "error"
)

// Notification is one transient user-facing outcome message.
type Notification struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      NotificationStatus `json:"status"`
	Timestamp   time.Time          `json:"timestamp"`
}

// INotifier is how containers raise user-facing outcome notifications.
type INotifier interface {
	Publish(n Notification)
}

// ToastPublisher delivers notifications over a buffered channel to
// whatever front end is attached. Publishing never blocks a container
// operation: when the buffer is full the oldest notification is dropped,
// matching the transient nature of a toast.
type ToastPublisher struct {
	notifications chan Notification

	mu                sync.Mutex
	messagesPublished int64
	messagesDropped   int64
	lastPublishTime   time.Time
}

var _ INotifier = (*ToastPublisher)(nil)

func NewToastPublisher(buffer int) *ToastPublisher {
	if buffer <= 0 {
		buffer = 16
	}
	return &ToastPublisher{
		notifications:   make(chan Notification, buffer),
		lastPublishTime: time.Now(),
	}
}

// Notifications is the consumer side of the toast stream.
func (p *ToastPublisher) Notifications() <-chan Notification {
	return p.notifications
}

func (p *ToastPublisher) Publish(n Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	for {
		select {
		case p.notifications <- n:
			p.mu.Lock()
			p.messagesPublished++
			p.lastPublishTime = n.Timestamp
			p.mu.Unlock()
			slog.Info("Notification published",
				"status", n.Status,
				"title", n.Title,
			)
			return
		default:
			// Buffer full: drop the oldest toast and retry.
			select {
			case <-p.notifications:
				p.mu.Lock()
				p.messagesDropped++
				p.mu.Unlock()
			default:
			}
		}
	}
}

// GetMetrics returns publisher counters.
func (p *ToastPublisher) GetMetrics() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]any{
		"messages_published": p.messagesPublished,
		"messages_dropped":   p.messagesDropped,
		"last_publish_time":  p.lastPublishTime,
	}
}

// Success builds a success toast.
func Success(title, description string) Notification {
	return Notification{Title: title, Description: description, Status: StatusSuccess}
}

// Error builds an error toast.
func Error(title, description string) Notification {
	return Notification{Title: title, Description: description, Status: StatusError}
}
