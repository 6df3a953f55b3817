package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/handler"
	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/service"
	"github.com/sakif/vininote/internal/store"
)

// testEnv is a running server over the memory backend and a client that
// keeps cookies between calls.
type testEnv struct {
	t      *testing.T
	srv    *Server
	http   *httptest.Server
	client *http.Client
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
			MaxUploadBytes:  1 << 20,
		},
		Storage: config.StorageConfig{Driver: config.DriverMemory},
		Session: config.SessionConfig{
			Secret:     "test-session-secret-32-characters",
			TTL:        time.Hour,
			CookieName: "vininote_session",
		},
		Log: config.LogConfig{Level: "error", Format: "text"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv, err := New(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return &testEnv{t: t, srv: srv, http: ts, client: &http.Client{Jar: jar}}
}

// do sends body as JSON (when non-nil) and decodes a JSON reply into out
// (when non-nil). It returns the status code.
func (e *testEnv) do(method, path string, body, out any) int {
	e.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rd)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "postgres"

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestNew_RejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Secret = "short"

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.client.Get(e.http.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = e.client.Get(e.http.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "vininote_events_clients")
}

func TestHomePage(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.client.Get(e.http.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Commencer")
}

func TestQuickNoteAndLibrary(t *testing.T) {
	e := newTestEnv(t)

	var created model.Tasting
	status := e.do(http.MethodPost, "/api/tastings/quick", map[string]string{"name": " Morgon ", "year": "2020"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Morgon", created.Wine.Name)
	assert.NotEmpty(t, created.ID)

	var bad handler.ErrorResponse
	status = e.do(http.MethodPost, "/api/tastings/quick", map[string]string{"name": "X", "year": "20"}, &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", bad.Error)

	var list []model.Tasting
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/tastings?q=morg", nil, &list))
	require.Len(t, list, 1)

	var detail handler.TastingDetail
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/tastings/"+created.ID, nil, &detail))
	assert.Equal(t, "Morgon (2020)", detail.Title)

	var summary service.Summary
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/home", nil, &summary))
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, service.CTANew, summary.CTA)

	var missing handler.ErrorResponse
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/tastings/nope", nil, &missing))
	assert.Equal(t, "not_found", missing.Error)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/tastings/"+created.ID, nil, nil))
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/tastings", nil, &list))
	assert.Empty(t, list)
}

func TestQuickNote_FormPostRedirectsHome(t *testing.T) {
	e := newTestEnv(t)
	e.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := e.client.PostForm(e.http.URL+"/api/tastings/quick", map[string][]string{
		"name": {"Chablis"},
		"year": {""},
	})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Len(t, e.srv.Journal().Tastings.List(context.Background()), 1)
}

func TestFavorites(t *testing.T) {
	e := newTestEnv(t)

	var created model.Tasting
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/tastings/quick", map[string]string{"name": "Bandol"}, &created))

	var state handler.FavoriteState
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/favorites/"+created.ID+"/toggle", nil, &state))
	assert.True(t, state.Favorite)

	var favs []model.Tasting
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/favorites", nil, &favs))
	require.Len(t, favs, 1)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/favorites/"+created.ID, map[string]bool{"favorite": false}, &state))
	assert.False(t, state.Favorite)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/favorites/ghost/toggle", nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/favorites/"+created.ID, map[string]string{}, nil))
}

func TestSessionAndProfile(t *testing.T) {
	e := newTestEnv(t)

	// No cookie yet.
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPut, "/api/profile", map[string]string{"name": "Marie"}, nil))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/profile", nil, nil))

	var bad handler.ErrorResponse
	require.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/session/login", map[string]string{"email": "not-an-email"}, &bad))

	var p model.UserProfile
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/session/login", map[string]string{"email": "marie.dupont@example.com"}, &p))
	assert.Equal(t, "marie.dupont", p.Name)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/profile", map[string]string{"name": "Marie", "bio": " sommelière "}, &p))
	assert.Equal(t, "Marie", p.Name)
	require.NotNil(t, p.Bio)
	assert.Equal(t, "sommelière", *p.Bio)

	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/profile", nil, &p))
	assert.Equal(t, "Marie", p.Name)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/api/session/logout", nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/profile", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPut, "/api/profile", map[string]string{"name": "X"}, nil))
}

func TestWizardFlow(t *testing.T) {
	e := newTestEnv(t)

	var d service.DraftView
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/wizard", nil, &d))
	require.Equal(t, 1, d.Step)
	wid := d.ID

	// Gate is closed on an empty form.
	var gate handler.ErrorResponse
	require.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/wizard/"+wid+"/next", nil, &gate))
	assert.Equal(t, "add at least vintage, name and color", gate.Message)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPatch, "/api/wizard/"+wid, map[string]any{"color": "orange"}, nil))

	require.Equal(t, http.StatusOK, e.do(http.MethodPatch, "/api/wizard/"+wid, map[string]any{
		"year": "2019", "name": "Pommard", "color": "rouge", "addGrapes": []string{"Pinot Noir"},
	}, &d))
	assert.True(t, d.GateOpen)

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/wizard/"+wid+"/jump/5", nil, &d))
	assert.Equal(t, 5, d.Step)

	var saved model.Tasting
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/wizard/"+wid+"/finish", nil, &saved))
	assert.Equal(t, "Pommard", saved.Wine.Name)
	assert.Equal(t, []string{"Pinot Noir"}, saved.Wine.Grapes)

	// The draft is gone once saved.
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/wizard/"+wid, nil, nil))

	// Edit reopens it with the stored values.
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/wizard/edit/"+saved.ID, nil, &d))
	assert.True(t, d.Editing)
	assert.Equal(t, "Pommard", d.Fields.Name)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/wizard/"+d.ID, nil, nil))

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/wizard/edit/ghost", nil, nil))
}

func TestWizardSuggestions(t *testing.T) {
	e := newTestEnv(t)

	var sg handler.GrapeSuggestions
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/wizard/suggestions/grapes?q=pinot", nil, &sg))
	assert.NotEmpty(t, sg.Suggestions)
	for _, s := range sg.Suggestions {
		assert.Contains(t, strings.ToLower(s), "pinot")
	}

	var aromas []string
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/wizard/suggestions/aromas", nil, &aromas))
	assert.NotEmpty(t, aromas)
}

// pngHeader is enough for http.DetectContentType to say image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestWizardPhotoIsServedAsPreview(t *testing.T) {
	e := newTestEnv(t)

	var d service.DraftView
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/wizard", nil, &d))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "label.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := e.client.Post(e.http.URL+"/api/wizard/"+d.ID+"/photo", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, d.Fields.PhotoURL)

	resp, err = e.client.Get(e.http.URL + *d.Fields.PhotoURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Discarding the draft releases the preview.
	require.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/wizard/"+d.ID, nil, nil))
	resp, err = e.client.Get(e.http.URL + *d.Fields.PhotoURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuizFlowRecordsProgress(t *testing.T) {
	e := newTestEnv(t)

	var v service.QuizView
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/learn/grape/sessions", nil, &v))
	require.NotNil(t, v.Question)

	for !v.Done {
		require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/quiz/"+v.ID+"/answer", map[string]int{"choice": 0}, &v))
		require.NotNil(t, v.Feedback)
		require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/quiz/"+v.ID+"/next", nil, &v))
	}
	require.NotNil(t, v.Progress)
	assert.Equal(t, 1, v.Progress.Attempts)

	var p model.QuizProgress
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/learn/grape/progress", nil, &p))
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, v.Score, p.BestScore)

	var hub service.Hub
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/learn", nil, &hub))
	assert.Len(t, hub.Topics, 3)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/learn/cheese/sessions", nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/quiz/"+v.ID+"/answer", map[string]string{}, nil))
}

func TestEventsStreamChanges(t *testing.T) {
	e := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return e.srv.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/tastings/quick", map[string]string{"name": "Cornas"}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var c store.Change
	require.NoError(t, conn.ReadJSON(&c))
	assert.Equal(t, store.KeyTastings, c.Key)
	assert.Equal(t, store.OpInsert, c.Op)
	assert.False(t, c.External)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	srv, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
