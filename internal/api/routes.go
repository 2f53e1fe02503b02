package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"eventportal/internal/model"
	"eventportal/internal/schema"
)

type TicketReader interface {
	Ticket(ctx context.Context, id string) (*model.TicketDetails, error)
	Display(ctx context.Context, id string) (*model.Display, error)
}

type EventReader interface {
	Event(ctx context.Context, id string) (*model.EventDetails, error)
}

type ChatGateway interface {
	Thread(ctx context.Context, ticketID string) ([]model.Chat, error)
	Ask(ctx context.Context, ticketID, question string) (string, error)
	Window() time.Duration
}

// ThreadWatcher delivers chat thread change notifications.
type ThreadWatcher interface {
	Subscribe(ctx context.Context, channel string) (<-chan struct{}, func())
}

type Dependencies struct {
	Tickets   TicketReader
	Events    EventReader
	Chats     ChatGateway
	Questions *schema.Validator
	Watcher   ThreadWatcher
	Log       *zap.Logger

	// PollInterval is how often a live chat connection re-reads the thread.
	PollInterval time.Duration
	// Timeout bounds every request except live chat connections.
	Timeout time.Duration
}

// Router builds the complete HTTP handler of the portal.
func Router(d Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Mount("/api", Routes(d))
	return r
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if d.Timeout > 0 {
			r.Use(middleware.Timeout(d.Timeout))
		}

		r.Get("/tickets/{id}", d.getTicket)
		r.Get("/events/{id}", d.getEvent)
		r.Get("/display/{id}", d.getDisplay)

		r.Get("/ask-adam/{id}", d.getThread)
		r.Post("/ask-adam/{id}", d.postQuestion)
	})

	// Live chat connections outlive any request timeout.
	r.Get("/ask-adam/{id}/ws", d.watchThread)

	return r
}
