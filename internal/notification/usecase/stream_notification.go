package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/libris/internal/notification/entity"
)

// StreamEvent is a new inbox entry pushed over SSE.
type StreamEvent struct {
	ID         int64          `json:"id,string"`
	TriggerKey string         `json:"trigger_key"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`

	userID int64
}

type subscriber struct {
	ch chan StreamEvent
}

// StreamNotifications registers a stream for a user and closes it when ctx is done.
func (s *Usecase) StreamNotifications(ctx context.Context, userID int64) <-chan StreamEvent {
	sub := &subscriber{ch: make(chan StreamEvent, 10)}

	s.streamMu.Lock()
	if s.streams[userID] == nil {
		s.streams[userID] = make(map[*subscriber]struct{})
	}
	s.streams[userID][sub] = struct{}{}
	s.streamMu.Unlock()

	go func() {
		<-ctx.Done()
		s.streamMu.Lock()
		if subs := s.streams[userID]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(s.streams, userID)
			}
		}
		close(sub.ch)
		s.streamMu.Unlock()
	}()

	return sub.ch
}

// publishNotification never blocks: a subscriber with a full buffer misses
// the event and picks it up from the inbox list.
func (s *Usecase) publishNotification(evt StreamEvent) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	for sub := range s.streams[evt.userID] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

func streamEvent(n entity.Notification) StreamEvent {
	return StreamEvent{
		ID:         n.ID,
		TriggerKey: n.TriggerKey.String(),
		Title:      n.Title,
		Body:       n.Body,
		Data:       n.Data,
		CreatedAt:  n.CreatedAt,
		userID:     n.UserID,
	}
}
