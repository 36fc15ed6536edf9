package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/notification"
	"github.com/jobboard/backend/internal/domain/shared"
)

// NotificationResponse is a notification as returned to its owner
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Reference string     `json:"reference,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Reference: n.Reference,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// Service reads notifications for their owner
type Service struct {
	repo notification.Repository
}

// NewService creates a notification service
func NewService(repo notification.Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of the account's notifications, newest first
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[NotificationResponse], error) {
	filter = filter.Normalize()
	items, total, err := s.repo.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}
	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = ToNotificationResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}
