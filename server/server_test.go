package server

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/ingest"
	"github.com/TFMV/neongraph/reveal"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arts = "college-of-arts-and-humanities"

type recorder struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *recorder) record(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ev)
}

func (r *recorder) count(topic events.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.got {
		if ev.Topic == topic {
			n++
		}
	}
	return n
}

func (r *recorder) topics() []events.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Topic
	for _, ev := range r.got {
		out = append(out, ev.Topic)
	}
	return out
}

func newTestServer(t *testing.T, tweaks ...func(*Config)) (*Server, *anim.ManualScheduler, *recorder) {
	t.Helper()
	clock := anim.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := events.NewBus(events.WithClock(clock.Now))
	rec := &recorder{}
	bus.SubscribeAll(rec.record)

	cfg := Config{Reveal: reveal.DefaultOptions(), Seed: 3}
	for _, tweak := range tweaks {
		tweak(&cfg)
	}
	s := New(cfg, ingest.Fallback(), WithBus(bus), WithScheduler(clock))
	t.Cleanup(s.closeAll)
	return s, clock, rec
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServer_Index(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "NeonGraph")

	w = do(t, s.Handler(), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Departments(t *testing.T) {
	s, _, rec := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/api/departments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "school-of-visual-arts-and-design", list[0]["id"])

	w = do(t, h, http.MethodGet, "/api/departments/"+arts, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, arts, decode[map[string]any](t, w)["id"])

	w = do(t, h, http.MethodGet, "/api/departments/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/departments/"+arts+"/card", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodDelete, "/api/departments/"+arts+"/card", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []events.Topic{events.TopicDataCardShown, events.TopicDataCardHidden}, rec.topics())
	rec.mu.Lock()
	assert.Equal(t, events.DataCardShown{DepartmentID: arts}, rec.got[0].Payload)
	rec.mu.Unlock()
}

func TestServer_Overview(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/api/overview?w=1000&h=700", nil)
	require.Equal(t, http.StatusOK, w.Code)

	slots := decode[[]ingest.Slot](t, w)
	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.GreaterOrEqual(t, slot.X, 0.0)
		assert.LessOrEqual(t, slot.X+slot.Width, 1000.0)
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	s, clock, rec := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/api/sessions", strings.NewReader(`{"department":"`+arts+`"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := created["id"].(string)
	assert.Equal(t, arts, created["department"])
	assert.Equal(t, "building", created["state"])

	base := "/api/sessions/" + id
	clock.Advance(6 * time.Second)
	w = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fully_revealed", decode[map[string]any](t, w)["state"])

	w = do(t, h, http.MethodPost, base+"/toggle/internal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["enabled"])

	w = do(t, h, http.MethodPost, base+"/toggle/central", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, base+"/toggle/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, base+"/highlight/degree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess, err := s.Session(id)
	require.NoError(t, err)
	_, ok := sess.HoveredFilter()
	assert.True(t, ok)
	w = do(t, h, http.MethodPost, base+"/highlight/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok = sess.HoveredFilter()
	assert.False(t, ok)

	w = do(t, h, http.MethodPost, base+"/zoom/in", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1.2, decode[map[string]any](t, w)["zoom"], 1e-9)
	w = do(t, h, http.MethodPost, base+"/zoom/sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, base+"/pointer?x=640&y=400&click=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	clicked := decode[map[string]any](t, w)["clicked"].(map[string]any)
	assert.Equal(t, reveal.CentralID, clicked["id"])
	w = do(t, h, http.MethodPost, base+"/pointer?x=a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, base+"/resize?w=800&h=600", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodPost, base+"/resize?w=0&h=600", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, base+"/frame.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	frame := decode[map[string]any](t, w)
	assert.Equal(t, "graph", frame["kind"])

	w = do(t, h, http.MethodGet, base+"/frame.png?legend=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, h, http.MethodGet, base+"/frame.gif", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodGet, base+"/frame.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, reveal.StateDestroyed, sess.State())

	topics := rec.topics()
	require.NotEmpty(t, topics)
	assert.Equal(t, events.TopicDetailViewEntered, topics[0])
	assert.Contains(t, topics, events.TopicNodeClicked)
	assert.Contains(t, topics, events.TopicCategoryToggled)
	assert.Equal(t, events.TopicDetailViewExited, topics[len(topics)-1])
}

func TestServer_AbandonedSessionsAreReclaimed(t *testing.T) {
	s, clock, rec := newTestServer(t, func(c *Config) { c.MaxSessions = 4 })
	h := s.Handler()

	var ids []string
	for range 50 {
		w := do(t, h, http.MethodPost, "/api/sessions", strings.NewReader(`{"department":"`+arts+`"}`))
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode[map[string]any](t, w)["id"].(string))
		clock.Advance(time.Second)
	}

	assert.Equal(t, 4, s.Sessions())
	assert.Equal(t, 46, rec.count(events.TopicDetailViewExited))
	_, err := s.Session(ids[0])
	assert.ErrorIs(t, err, ErrSessionNotFound)
	for _, id := range ids[46:] {
		_, err := s.Session(id)
		assert.NoError(t, err)
	}

	clock.Advance(24 * time.Hour)
	assert.Zero(t, s.Sessions())
	assert.Zero(t, clock.Pending(), "no frame loops or sweeps left behind")
	assert.Equal(t, 50, rec.count(events.TopicDetailViewExited))
}

func TestServer_IdleSessionsEvicted(t *testing.T) {
	s, clock, _ := newTestServer(t, func(c *Config) { c.SessionIdle = time.Minute })
	ctx := context.Background()

	a, err := s.OpenSession(ctx, arts)
	require.NoError(t, err)
	b, err := s.OpenSession(ctx, arts)
	require.NoError(t, err)

	clock.Advance(45 * time.Second)
	_, err = s.Session(a.ID())
	require.NoError(t, err)

	clock.Advance(20 * time.Second)
	assert.Equal(t, 1, s.Sessions())
	_, err = s.Session(b.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, reveal.StateDestroyed, b.State())

	_, err = s.Session(a.ID())
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	assert.Zero(t, s.Sessions())
	assert.Equal(t, reveal.StateDestroyed, a.State())
	assert.Zero(t, clock.Pending())
	assert.Zero(t, s.EvictIdle(ctx))

	_, err = s.OpenSession(ctx, arts)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Sessions())
}

func TestServer_CreateSessionErrors(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/api/sessions", strings.NewReader(`{"department":"missing"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/sessions", strings.NewReader(`{`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Intro(t *testing.T) {
	s, clock, rec := newTestServer(t)
	h := s.Handler()

	a := s.RestartIntro()
	clock.Advance(3 * time.Second)
	require.Positive(t, a.Count())

	w := do(t, h, http.MethodGet, "/api/intro/frame.svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<svg")

	w = do(t, h, http.MethodPost, "/api/intro/skip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, a.Count(), decode[map[string]any](t, w)["paths"])
	for _, p := range a.Snapshot().Paths {
		assert.Equal(t, 1.0, p.Progress)
	}
	assert.Equal(t, []events.Topic{events.TopicIntroSkipped}, rec.topics())

	w = do(t, h, http.MethodPost, "/api/intro/restart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotSame(t, a, s.Intro())
	assert.False(t, a.Running())
}

func TestServer_Upload(t *testing.T) {
	s, _, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("dataFile", "plan.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, ingest.ColumnDepartment+","+ingest.ColumnDegrees+"\nMusic Dept,Music BM\n")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "upload:plan.csv", s.Dataset().Source)
	assert.Equal(t, []string{"music-dept"}, s.Dataset().DepartmentIDs())

	body.Reset()
	mw = multipart.NewWriter(&body)
	fw, err = mw.CreateFormFile("dataFile", "plan.xlsx")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("x"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestServer_EventStream(t *testing.T) {
	s, _, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?topics=viz.datacard.*", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	s.SkipIntro(context.Background())
	card, err := http.Get(ts.URL + "/api/departments/" + arts + "/card")
	require.NoError(t, err)
	card.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		if sc.Text() == "" {
			break
		}
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "event:viz.datacard.shown", lines[1])
	assert.Contains(t, lines[2], `"department_id":"`+arts+`"`)
}

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"viz.intro.skipped", "viz.intro.skipped", true},
		{"viz.*.shown", "viz.datacard.shown", true},
		{"viz.*", "viz.datacard.shown", false},
		{"viz.>", "viz.datacard.shown", true},
		{"viz.datacard.>", "viz.datacard", false},
		{"viz.detail.*", "viz.datacard.shown", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchTopic(tc.pattern, tc.topic), tc.pattern+" "+tc.topic)
	}
}

func TestServer_ServeShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/departments")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, s.Intro().Running())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.Intro().Running())
}
