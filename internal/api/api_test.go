package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventportal/internal/crm"
	"eventportal/internal/model"
	"eventportal/internal/pubsub"
	"eventportal/internal/schema"
	"eventportal/internal/service"
)

const ticketID = "6f1c2d3e-0000-4000-8000-000000000001"

type stubTickets struct {
	err error
}

func (s stubTickets) Ticket(ctx context.Context, id string) (*model.TicketDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	name := "GA"
	return &model.TicketDetails{Ticket: model.Ticket{ID: id, Name: &name}}, nil
}

func (s stubTickets) Display(ctx context.Context, id string) (*model.Display, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Display{
		EventSchedules: []model.EventSchedule{{ID: "s1"}},
		TicketLinks:    []model.TicketLink{{ID: "l1", TypeLabel: "Information"}},
	}, nil
}

type stubEvents struct{}

func (stubEvents) Event(ctx context.Context, id string) (*model.EventDetails, error) {
	return &model.EventDetails{Event: model.Event{ID: id}}, nil
}

type stubChats struct {
	mu     sync.Mutex
	chats  []model.Chat
	askErr error
	asked  []string
}

func (s *stubChats) Thread(ctx context.Context, ticketID string) ([]model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Chat(nil), s.chats...), nil
}

func (s *stubChats) Ask(ctx context.Context, ticketID, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.askErr != nil {
		return "", s.askErr
	}
	s.asked = append(s.asked, question)
	return "new-id", nil
}

func (s *stubChats) Window() time.Duration { return 5 * time.Minute }

func (s *stubChats) add(c model.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, c)
}

func newTestRouter(t *testing.T, tickets TicketReader, chats *stubChats, watcher ThreadWatcher) http.Handler {
	t.Helper()
	questions, err := schema.NewQuestionValidator(50)
	require.NoError(t, err)
	return Router(Dependencies{
		Tickets:      tickets,
		Events:       stubEvents{},
		Chats:        chats,
		Questions:    questions,
		Watcher:      watcher,
		Log:          zap.NewNop(),
		PollInterval: 20 * time.Millisecond,
		Timeout:      5 * time.Second,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTicket(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)

	rec := do(t, h, http.MethodGet, "/api/tickets/"+strings.ToUpper(ticketID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.JSONEq(t, `{"id":"`+ticketID+`","name":"GA","remainingScans":null,"onlineUrl":null,"dynamicUrl":null}`, string(body["ticket"]))
	assert.Contains(t, body, "ticketLinkGroups")
}

func TestGetTicket_InvalidID(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)

	rec := do(t, h, http.MethodGet, "/api/tickets/not-a-guid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "invalid_id", resp.Error)
	assert.Equal(t, "invalid_id", resp.Code)
	assert.NotEmpty(t, resp.Message)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("failed to get ticket: %w", &crm.Error{StatusCode: 404}), http.StatusNotFound, "not_found"},
		{"no event", service.ErrEventUnresolvable, http.StatusNotFound, "event_not_found"},
		{"auth", &crm.AuthError{Err: errors.New("invalid_client")}, http.StatusBadGateway, "upstream_auth_failed"},
		{"upstream", &crm.Error{StatusCode: 500}, http.StatusBadGateway, "upstream_error"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, stubTickets{err: tt.err}, &stubChats{}, nil)
			rec := do(t, h, http.MethodGet, "/api/tickets/"+ticketID, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestGetDisplay(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)

	rec := do(t, h, http.MethodGet, "/api/display/"+ticketID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var display model.Display
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&display))
	assert.Len(t, display.EventSchedules, 1)
	assert.Len(t, display.TicketLinks, 1)
}

func TestGetEvent(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)

	rec := do(t, h, http.MethodGet, "/api/events/"+ticketID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetThread(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	q := "Parking?"
	chats := &stubChats{chats: []model.Chat{{GUID: "c1", CreatedOn: &created, Question: &q}}}
	h := newTestRouter(t, stubTickets{}, chats, nil)

	rec := do(t, h, http.MethodGet, "/api/ask-adam/"+ticketID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"GUID":"c1","CreatedOn":"2024-06-01T10:00:00Z","Question":"Parking?","Answer":null,"TicketId":null,"AskAdamId":null}]`,
		rec.Body.String())
}

func TestPostQuestion(t *testing.T) {
	chats := &stubChats{}
	h := newTestRouter(t, stubTickets{}, chats, nil)

	rec := do(t, h, http.MethodPost, "/api/ask-adam/"+ticketID, `{"questionText":"Is there parking?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp QuestionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "new-id", resp.ID)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, []string{"Is there parking?"}, chats.asked)
}

func TestPostQuestion_InvalidBody(t *testing.T) {
	chats := &stubChats{}
	h := newTestRouter(t, stubTickets{}, chats, nil)

	for _, body := range []string{``, `{}`, `{"questionText":""}`, `{"questionText":"` + strings.Repeat("x", 51) + `"}`} {
		rec := do(t, h, http.MethodPost, "/api/ask-adam/"+ticketID, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_body", decodeError(t, rec).Error)
	}
	assert.Empty(t, chats.asked)
}

func TestPostQuestion_RateLimited(t *testing.T) {
	chats := &stubChats{askErr: service.ErrRateLimited}
	h := newTestRouter(t, stubTickets{}, chats, nil)

	rec := do(t, h, http.MethodPost, "/api/ask-adam/"+ticketID, `{"questionText":"Again?"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))

	resp := decodeError(t, rec)
	assert.Equal(t, "rate_limited", resp.Error)
	assert.NotEmpty(t, resp.Message)
}

func dialThread(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ask-adam/" + ticketID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readThread(t *testing.T, conn *websocket.Conn) ThreadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ThreadMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWatchThread(t *testing.T) {
	chats := &stubChats{chats: []model.Chat{{GUID: "c1"}}}
	srv := httptest.NewServer(newTestRouter(t, stubTickets{}, chats, nil))
	defer srv.Close()

	conn := dialThread(t, srv)

	first := readThread(t, conn)
	assert.Equal(t, "thread", first.Type)
	require.Len(t, first.Chats, 1)

	chats.add(model.Chat{GUID: "c2"})

	next := readThread(t, conn)
	require.Len(t, next.Chats, 2)
	assert.Equal(t, "c2", next.Chats[1].GUID)
}

func TestWatchThread_PushesOnNotification(t *testing.T) {
	bus := pubsub.New(nil, zap.NewNop())
	chats := &stubChats{chats: []model.Chat{{GUID: "c1"}}}
	questions, err := schema.NewQuestionValidator(50)
	require.NoError(t, err)

	h := Router(Dependencies{
		Tickets:      stubTickets{},
		Events:       stubEvents{},
		Chats:        chats,
		Questions:    questions,
		Watcher:      bus,
		Log:          zap.NewNop(),
		PollInterval: time.Hour,
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialThread(t, srv)
	readThread(t, conn)

	chats.add(model.Chat{GUID: "c2"})

	require.NoError(t, bus.Publish(context.Background(), pubsub.ThreadChannel(ticketID)))

	next := readThread(t, conn)
	assert.Len(t, next.Chats, 2)
}

func TestWatchThread_InvalidID(t *testing.T) {
	h := newTestRouter(t, stubTickets{}, &stubChats{}, nil)
	rec := do(t, h, http.MethodGet, "/api/ask-adam/nope/ws", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
