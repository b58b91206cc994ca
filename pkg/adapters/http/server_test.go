package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/observability"
	"github.com/aretw0/mentor/pkg/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	loader, err := memory.NewLoader(domain.Section{
		ID:   "triage",
		Name: "Triage",
		Cases: []domain.Case{
			{ID: "intake", Question: "Chest pain?", MentorAnswer: "Check vitals.", Next: "referral"},
			{ID: "referral", Question: "ST elevation?", MentorAnswer: "Cardiology."},
		},
	})
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	mgr := session.NewManager(memory.NewStore(), session.WithSessionOptions(
		session.WithTaskObserver(metrics.ObserveTask),
	))
	srv := httptest.NewServer(NewHandler(mgr, loader, WithMetrics(metrics.Handler())))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func call(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func rendered(t *testing.T, out EventResponse) Effect {
	t.Helper()
	for _, e := range out.Effects {
		if e.Type == domain.EffectRender {
			return e
		}
	}
	t.Fatal("no render effect")
	return Effect{}
}

func openSession(t *testing.T, base string) SessionResponse {
	t.Helper()
	resp, body := call(t, http.MethodPost, base+"/sessions", OpenSessionRequest{SectionPath: "triage"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out SessionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestServer_HealthInfo(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := call(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = call(t, http.MethodGet, srv.URL+"/info", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"app":"mentor-http"`)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_TrainingFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	opened := openSession(t, srv.URL)
	assert.Equal(t, "triage", opened.SectionID)
	assert.Equal(t, domain.KindInstruction, opened.View.Node.Kind)

	again, body := call(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{SectionPath: "triage"})
	assert.Equal(t, http.StatusOK, again.StatusCode, "re-opening returns the open session")
	assert.Contains(t, string(body), opened.SessionID)

	events := srv.URL + "/sessions/" + opened.SessionID + "/events"
	send := func(ev EventRequest) (int, EventResponse) {
		resp, body := call(t, http.MethodPost, events, ev)
		var out EventResponse
		require.NoError(t, json.Unmarshal(body, &out), string(body))
		return resp.StatusCode, out
	}

	status, out := send(EventRequest{Type: domain.EventStart})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "intake", rendered(t, out).Node.Key)

	status, out = send(EventRequest{Type: domain.EventAdvance})
	assert.Equal(t, http.StatusConflict, status)
	require.Len(t, out.Effects, 1)
	assert.Equal(t, domain.EffectIllegalTransition, out.Effects[0].Type)
	assert.Contains(t, out.Effects[0].Error, "illegal transition")

	status, _ = send(EventRequest{Type: domain.EventSubmitAnswer, Text: "check vitals"})
	assert.Equal(t, http.StatusOK, status)

	status, out = send(EventRequest{Type: domain.EventSelectNode, Node: "referral"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StateUnvisited, rendered(t, out).State)

	status, _ = send(EventRequest{Type: domain.EventSubmitAnswer, Text: "jump ahead"})
	assert.Equal(t, http.StatusConflict, status)

	resp, body := call(t, http.MethodPost, events, EventRequest{Type: domain.EventSelectNode, Node: "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	resp, body = call(t, http.MethodGet, srv.URL+"/sessions/"+opened.SessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got SessionResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 1, got.Summary.Answered)
	assert.Equal(t, domain.StateAnswered, got.States["intake"])

	resp, body = call(t, http.MethodGet, srv.URL+"/sessions/"+opened.SessionID+"/graph", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "class intake answered;")
	assert.Contains(t, string(body), "class referral current;")

	resp, _ = call(t, http.MethodDelete, srv.URL+"/sessions/"+opened.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, srv.URL+"/sessions/"+opened.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ExportTask(t *testing.T) {
	srv, mgr := newTestServer(t)
	opened := openSession(t, srv.URL)
	base := srv.URL + "/sessions/" + opened.SessionID

	resp, _ := call(t, http.MethodGet, base+"/tasks/current", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := call(t, http.MethodPost, base+"/export", TaskRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	dest := filepath.Join(t.TempDir(), "solution.zip")
	resp, body = call(t, http.MethodPost, base+"/export", TaskRequest{Path: dest})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	sess, err := mgr.Get(opened.SessionID)
	require.NoError(t, err)
	require.NoError(t, sess.CurrentTask().Wait(context.Background()))

	resp, body = call(t, http.MethodGet, base+"/tasks/current", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"state":"succeeded"`)

	resp, body = call(t, http.MethodGet, srv.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `mentor_task_duration_seconds_count{kind="export",outcome="success"} 1`)
}

func TestServer_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := call(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, http.MethodPost, srv.URL+"/sessions", OpenSessionRequest{SectionPath: "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, srv.URL+"/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/sessions", strings.NewReader("{"))
	require.NoError(t, err)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestServer_Stream(t *testing.T) {
	srv, _ := newTestServer(t)
	opened := openSession(t, srv.URL)
	base := srv.URL + "/sessions/" + opened.SessionID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	call(t, http.MethodPost, base+"/events", EventRequest{Type: domain.EventStart})

	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: [") {
			assert.Contains(t, lines.Text(), `"key":"intake"`)
			return
		}
	}
	t.Fatal("no effects received")
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s1")
	assert.Equal(t, 1, sm.Count("s1"))

	sm.Broadcast("s1", "hello")
	sm.Broadcast("s2", "ignored")
	assert.Equal(t, "hello", <-ch)

	for i := 0; i < 20; i++ {
		sm.Broadcast("s1", "flood")
	}
	assert.Len(t, ch, 10)

	cancel()
	assert.Equal(t, 0, sm.Count("s1"))
}
