package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/gps"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestWeb_CurrentBeforeAndAfterFirstSample(t *testing.T) {
	e := newTestEngine(nil)
	h := NewWebHandler(e, "")

	rec := serve(t, h, http.MethodGet, "/api/affect/current")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	want := e.HandleSample(stillSample(0))
	rec = serve(t, h, http.MethodGet, "/api/affect/current")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got affect.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, affect.EmotionUnknown, got.Emotion.Emotion)
	assert.Equal(t, want.Features.SampleCount, got.Features.SampleCount)
	assert.Equal(t, affect.NeutralState(), got.State)
}

func TestWeb_History(t *testing.T) {
	e := newTestEngine(nil)
	h := NewWebHandler(e, "")
	for i := 0; i < 35; i++ {
		e.HandleSample(stillSample(i))
	}

	var all HistoryResponse
	rec := serve(t, h, http.MethodGet, "/api/affect/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all.Emotions, 35)
	assert.Len(t, all.States, 35)

	var recent HistoryResponse
	rec = serve(t, h, http.MethodGet, "/api/affect/history?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent.Emotions, 3)
	assert.Equal(t, affect.EmotionCalm, recent.Emotions[2].Emotion)

	rec = serve(t, h, http.MethodGet, "/api/affect/history?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(t, h, http.MethodGet, "/api/affect/history?limit=many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeb_DistributionAndReset(t *testing.T) {
	e := newTestEngine(nil)
	h := NewWebHandler(e, "")
	for i := 0; i < 40; i++ {
		e.HandleSample(stillSample(i))
	}

	var dist DistributionResponse
	rec := serve(t, h, http.MethodGet, "/api/affect/distribution")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	assert.Equal(t, map[affect.EmotionType]int{affect.EmotionUnknown: 29, affect.EmotionCalm: 11}, dist.Distribution)
	assert.Equal(t, affect.EmotionCalm, dist.Dominant)
	assert.Equal(t, 40, dist.Total)

	rec = serve(t, h, http.MethodGet, "/api/affect/reset")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(t, h, http.MethodPost, "/api/affect/reset")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := e.Pipeline.Current()
	assert.False(t, ok)
	assert.Empty(t, e.Pipeline.Distribution())
}

func TestWeb_GPS(t *testing.T) {
	e := newTestEngine(nil)
	h := NewWebHandler(e, "")

	rec := serve(t, h, http.MethodGet, "/api/gps")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e.GPS.Store(gps.Fix{Latitude: 48.1, Longitude: 11.5, Validity: "A"})
	rec = serve(t, h, http.MethodGet, "/api/gps")
	require.Equal(t, http.StatusOK, rec.Code)

	var fix gps.Fix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fix))
	assert.Equal(t, 48.1, fix.Latitude)
}

func TestWeb_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>affect</h1>"), 0o644))

	h := NewWebHandler(newTestEngine(nil), dir)
	rec := serve(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "affect")

	h = NewWebHandler(newTestEngine(nil), filepath.Join(dir, "missing"))
	rec = serve(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWeb_WebsocketStreamsResults(t *testing.T) {
	e := newTestEngine(nil)
	srv := httptest.NewServer(NewWebHandler(e, ""))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/affect"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return e.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	want := e.HandleSample(stillSample(0))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got affect.Result
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, want.Features.SampleCount, got.Features.SampleCount)
	assert.Equal(t, want.Emotion.Emotion, got.Emotion.Emotion)

	conn.Close()
	require.Eventually(t, func() bool { return e.Hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	// broadcasting with no clients is a no-op
	hub.Broadcast(map[string]int{"n": 1})
}
