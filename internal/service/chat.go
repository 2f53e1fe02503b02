package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"eventportal/internal/crm"
	"eventportal/internal/model"
	"eventportal/internal/pubsub"
	"eventportal/internal/ratelimit"
)

var ErrRateLimited = errors.New("a question was asked too recently")

// Notifier is told when a thread gains a question.
type Notifier interface {
	Publish(ctx context.Context, channel string) error
}

type ChatService struct {
	connect Connector
	guard   ratelimit.Guard
	notify  Notifier
	window  time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewChatService(connect Connector, guard ratelimit.Guard, notify Notifier, window time.Duration, log *zap.Logger) *ChatService {
	return &ChatService{
		connect: connect,
		guard:   guard,
		notify:  notify,
		window:  window,
		now:     time.Now,
		log:     log,
	}
}

// Window is the minimum spacing between two questions on a ticket.
func (s *ChatService) Window() time.Duration {
	return s.window
}

// SortChats orders a thread by creation time, oldest first. Entries without
// a timestamp go last; equal entries keep their order.
func SortChats(chats []model.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].CreatedOn, chats[j].CreatedOn
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})
}

// Thread returns the ticket's chat history.
func (s *ChatService) Thread(ctx context.Context, ticketID string) ([]model.Chat, error) {
	st, err := s.connect.Connect(ctx)
	if err != nil {
		return nil, err
	}

	records, err := st.ListAskAdam(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat: %w", err)
	}

	chats := chatsToModel(records)
	SortChats(chats)
	return chats, nil
}

// Ask records a new question on the ticket's thread and returns its id.
// It fails with ErrRateLimited when the previous question is younger than
// the window or another submission for the ticket is in flight.
func (s *ChatService) Ask(ctx context.Context, ticketID, question string) (string, error) {
	st, err := s.connect.Connect(ctx)
	if err != nil {
		return "", err
	}

	latest, err := st.LatestAskAdam(ctx, ticketID)
	if err != nil {
		return "", fmt.Errorf("failed to get latest question: %w", err)
	}
	if latest != nil && latest.CreatedOn != nil && s.now().Sub(latest.CreatedOn.Time) < s.window {
		return "", ErrRateLimited
	}

	first, err := st.FirstAskAdam(ctx, ticketID)
	if err != nil {
		return "", fmt.Errorf("failed to get thread: %w", err)
	}

	reservation, err := s.guard.Reserve(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if !reservation.OK {
		return "", ErrRateLimited
	}

	in := crm.NewAskAdam{TicketID: ticketID, Question: question}
	if first != nil {
		in.ParentID = first.ID
	}

	id, err := st.CreateAskAdam(ctx, in)
	if err != nil {
		// Use a fresh context so a cancelled request still frees the ticket.
		if rerr := s.guard.Release(context.WithoutCancel(ctx), reservation); rerr != nil {
			s.log.Warn("Failed to release reservation", zap.String("ticket_id", ticketID), zap.Error(rerr))
		}
		return "", fmt.Errorf("failed to create question: %w", err)
	}

	s.log.Info("Question recorded", zap.String("ticket_id", ticketID), zap.String("id", id))

	if s.notify != nil {
		if err := s.notify.Publish(ctx, pubsub.ThreadChannel(ticketID)); err != nil {
			s.log.Warn("Failed to notify thread watchers", zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
	return id, nil
}
