// Package teletest runs a fake Bot API endpoint for handler tests.
// Calls are recorded per method; responses default to a plausible success.
package teletest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"
)

// Token is the bot token used by bots built with Server.Bot.
const Token = "123456:TEST"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]any
}

// Param returns a request parameter rendered as a string.
func (c Call) Param(name string) string {
	switch v := c.Params[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}

// Responder builds the result of a method. A non-nil *tele.Error is
// returned to the client as a Bot API failure.
type Responder func(call Call) (any, *tele.Error)

// Server is an httptest server speaking enough of the Bot API for tests.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	calls      []Call
	responders map[string]Responder
	nextID     int
}

// NewServer starts a fake endpoint that is closed with the test.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{responders: make(map[string]Responder)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Bot returns an offline bot that talks to this server.
func (s *Server) Bot(t testing.TB) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{
		URL:     s.URL,
		Token:   Token,
		Offline: true,
	})
	if err != nil {
		t.Fatalf("teletest: new bot: %v", err)
	}
	return bot
}

// Handle overrides the response for a method.
func (s *Server) Handle(method string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[method] = r
}

// Calls returns recorded calls, optionally filtered by method.
func (s *Server) Calls(method ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(method) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		if c.Method == method[0] {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	call := Call{Method: method, Params: map[string]any{}}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&call.Params)
	} else if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				call.Params[k] = v[0]
			}
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	responder := s.responders[method]
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	var (
		result any
		apiErr *tele.Error
	)
	if responder != nil {
		result, apiErr = responder(call)
	} else {
		result = defaultResult(call, id)
	}

	w.Header().Set("Content-Type", "application/json")
	if apiErr != nil {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  apiErr.Code,
			"description": apiErr.Description,
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func defaultResult(call Call, id int) any {
	switch call.Method {
	case "sendMessage", "editMessageText", "sendPhoto", "sendVideo":
		chatID, _ := strconv.ParseInt(call.Param("chat_id"), 10, 64)
		return map[string]any{
			"message_id": id,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       call.Param("text"),
		}
	case "getMe":
		return map[string]any{"id": 123456, "is_bot": true, "username": "test_bot"}
	default:
		return true
	}
}

// MessageUpdate builds a private text message update.
func MessageUpdate(updateID int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: updateID,
		Message: &tele.Message{
			ID:     updateID,
			Text:   text,
			Sender: &tele.User{ID: userID, FirstName: "User"},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

// CallbackUpdate builds a callback update with raw "\f<unique>|<payload>" data
// attached to a previous bot message.
func CallbackUpdate(updateID int, userID int64, unique, payload string) tele.Update {
	data := "\f" + unique
	if payload != "" {
		data += "|" + payload
	}
	return tele.Update{
		ID: updateID,
		Callback: &tele.Callback{
			ID:     "cb" + strconv.Itoa(updateID),
			Data:   data,
			Sender: &tele.User{ID: userID, FirstName: "User"},
			Message: &tele.Message{
				ID:   1,
				Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			},
		},
	}
}
