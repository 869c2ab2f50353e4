package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devnotes/internal/notes"
	"devnotes/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockAuthService, *mocks.MockNoteService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthService(ctrl)
	noteSvc := mocks.NewMockNoteService(ctrl)
	router := NewRouter(&Deps{AuthService: auth, NoteService: noteSvc, DB: okPinger{}})
	return router, auth, noteSvc
}

func TestNewRouter(t *testing.T) {
	router, _, _ := newTestRouter(t)
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      bool
		mockSetup  func(*mocks.MockAuthService, *mocks.MockNoteService)
		wantStatus int
	}{
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/auth/login exists",
			method:     http.MethodPost,
			path:       "/api/auth/login",
			body:       "{",
			wantStatus: http.StatusBadRequest, // route exists, body is invalid
		},
		{
			name:       "GET /api/auth/login method not allowed",
			method:     http.MethodGet,
			path:       "/api/auth/login",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "GET /api/notes without token",
			method:     http.MethodGet,
			path:       "/api/notes",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "GET /api/notes with token",
			method: http.MethodGet,
			path:   "/api/notes",
			token:  true,
			mockSetup: func(a *mocks.MockAuthService, n *mocks.MockNoteService) {
				n.EXPECT().List(gomock.Any(), "u1").Return([]notes.Note{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "DELETE /api/notes/{id} with token",
			method: http.MethodDelete,
			path:   "/api/notes/n1",
			token:  true,
			mockSetup: func(a *mocks.MockAuthService, n *mocks.MockNoteService) {
				n.EXPECT().Delete(gomock.Any(), "u1", "n1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "GET /api/auth/me with token",
			method: http.MethodGet,
			path:   "/api/auth/me",
			token:  true,
			mockSetup: func(a *mocks.MockAuthService, n *mocks.MockNoteService) {
				a.EXPECT().CurrentUser(gomock.Any(), "u1").Return(notes.User{ID: "u1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth, noteSvc := newTestRouter(t)
			if tt.token {
				auth.EXPECT().VerifyToken(gomock.Any(), "tok").Return("u1", nil)
			}
			if tt.mockSetup != nil {
				tt.mockSetup(auth, noteSvc)
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.token {
				req.Header.Set("Authorization", "Bearer tok")
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %v, want %v", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("Router should apply CORS middleware")
	}
}
