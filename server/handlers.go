package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/ingest"
	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/render"
	"github.com/TFMV/neongraph/reveal"
	"github.com/goccy/go-json"
)

const maxUpload = 10 << 20

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.Handle("GET /events", s.hub)

	mux.HandleFunc("GET /api/departments", s.handleDepartments)
	mux.HandleFunc("GET /api/departments/{id}", s.handleDepartment)
	mux.HandleFunc("GET /api/departments/{id}/card", s.handleCard)
	mux.HandleFunc("DELETE /api/departments/{id}/card", s.handleCardHidden)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	mux.HandleFunc("GET /api/intro/{file}", s.handleIntroFrame)
	mux.HandleFunc("POST /api/intro/skip", s.handleIntroSkip)
	mux.HandleFunc("POST /api/intro/restart", s.handleIntroRestart)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/{file}", s.handleSessionFrame)
	mux.HandleFunc("POST /api/sessions/{id}/toggle/{category}", s.handleToggle)
	mux.HandleFunc("POST /api/sessions/{id}/highlight/{category...}", s.handleHighlight)
	mux.HandleFunc("POST /api/sessions/{id}/zoom/{direction}", s.handleZoom)
	mux.HandleFunc("POST /api/sessions/{id}/pointer", s.handlePointer)
	mux.HandleFunc("POST /api/sessions/{id}/resize", s.handleResize)
	return mux
}

// handleIndex renders the main page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// handleUpload replaces the dataset with an uploaded JSON or CSV file
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "Error parsing form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, handler, err := r.FormFile("dataFile")
	if err != nil {
		http.Error(w, "Error retrieving file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	processor, err := ingest.ProcessorFor(handler.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		http.Error(w, "Error reading file: "+err.Error(), http.StatusBadRequest)
		return
	}
	depts, err := processor.ProcessData(data)
	if err != nil {
		http.Error(w, "Error processing file: "+err.Error(), http.StatusBadRequest)
		return
	}

	ds := models.NewDataset("upload:"+handler.Filename, depts)
	s.Reload(ds)
	writeJSON(w, http.StatusOK, map[string]any{
		"source":      ds.Source,
		"departments": ds.DepartmentIDs(),
	})
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Entries int    `json:"entries"`
		Complex bool   `json:"complex"`
	}
	ds := s.Dataset()
	out := make([]summary, 0, len(ds.Departments))
	for i := range ds.Departments {
		d := &ds.Departments[i]
		out = append(out, summary{ID: d.ID, Name: d.Name, Entries: d.EntryCount(), Complex: d.IsComplex()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDepartment(w http.ResponseWriter, r *http.Request) {
	dept, ok := s.Dataset().FindDepartment(r.PathValue("id"))
	if !ok {
		http.Error(w, "Department not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	dept, ok := s.Dataset().FindDepartment(r.PathValue("id"))
	if !ok {
		http.Error(w, "Department not found", http.StatusNotFound)
		return
	}
	s.bus.Publish(r.Context(), events.TopicDataCardShown, events.DataCardShown{DepartmentID: dept.ID})
	writeJSON(w, http.StatusOK, ingest.BuildCard(dept))
}

func (s *Server) handleCardHidden(w http.ResponseWriter, r *http.Request) {
	dept, ok := s.Dataset().FindDepartment(r.PathValue("id"))
	if !ok {
		http.Error(w, "Department not found", http.StatusNotFound)
		return
	}
	s.bus.Publish(r.Context(), events.TopicDataCardHidden, events.DataCardHidden{DepartmentID: dept.ID})
	w.WriteHeader(http.StatusNoContent)
}

// handleOverview lays the departments out around the title box. The
// caller may report its canvas size and title box.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width := floatParam(q.Get("w"), s.cfg.Reveal.Width)
	height := floatParam(q.Get("h"), s.cfg.Reveal.Height)
	title := ingest.TitleFallback(width, height)
	if s.cfg.Title != nil {
		title = *s.cfg.Title
	}
	if q.Has("left") && q.Has("top") && q.Has("right") && q.Has("bottom") {
		title.Min.X = floatParam(q.Get("left"), title.Min.X)
		title.Min.Y = floatParam(q.Get("top"), title.Min.Y)
		title.Max.X = floatParam(q.Get("right"), title.Max.X)
		title.Max.Y = floatParam(q.Get("bottom"), title.Max.Y)
	}
	writeJSON(w, http.StatusOK, ingest.RingLayout(s.Dataset().Departments, width, height, title))
}

func (s *Server) handleIntroFrame(w http.ResponseWriter, r *http.Request) {
	renderer, format, ok := frameRenderer(w, r.PathValue("file"))
	if !ok {
		return
	}
	frame := s.Intro().Snapshot()
	out, err := renderer.RenderIntro(&frame, s.renderOptions(r, format))
	if err != nil {
		http.Error(w, "Error rendering intro: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(out)
}

func (s *Server) handleIntroSkip(w http.ResponseWriter, r *http.Request) {
	n := s.SkipIntro(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"paths": n})
}

func (s *Server) handleIntroRestart(w http.ResponseWriter, r *http.Request) {
	a := s.RestartIntro()
	writeJSON(w, http.StatusOK, map[string]any{"running": a.Running(), "paths": a.Count()})
}

type sessionState struct {
	ID         string            `json:"id"`
	Department string            `json:"department"`
	State      reveal.State      `json:"state"`
	Enabled    []models.Category `json:"enabled"`
	Zoom       float64           `json:"zoom"`
	Tracks     []string          `json:"tracks,omitempty"`
}

func stateOf(sess *reveal.Session) sessionState {
	return sessionState{
		ID:         sess.ID(),
		Department: sess.Department().ID,
		State:      sess.State(),
		Enabled:    sess.Enabled(),
		Zoom:       sess.ZoomLevel(),
		Tracks:     sess.Tracks(),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Department string `json:"department"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := s.OpenSession(r.Context(), req.Department)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stateOf(sess))
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionFrame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	renderer, format, ok := frameRenderer(w, r.PathValue("file"))
	if !ok {
		return
	}
	frame := sess.Frame()
	out, err := renderer.RenderGraph(&frame, s.renderOptions(r, format))
	if err != nil {
		http.Error(w, "Error rendering frame: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(out)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	cat, err := models.ParseCategory(r.PathValue("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	on, err := sess.ToggleCategory(cat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": cat, "enabled": on})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	name := strings.Trim(r.PathValue("category"), "/")
	if name == "" {
		sess.ClearHoveredFilter()
		writeJSON(w, http.StatusOK, map[string]any{"highlight": nil})
		return
	}
	cat, err := models.ParseCategory(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.SetHoveredFilter(cat)
	writeJSON(w, http.StatusOK, map[string]any{"highlight": cat})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var z float64
	switch r.PathValue("direction") {
	case "in":
		z = sess.ZoomIn()
	case "out":
		z = sess.ZoomOut()
	default:
		http.Error(w, "zoom direction must be in or out", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zoom": z})
}

// handlePointer reports pointer movement, and clicks when click=1.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be numbers", http.StatusBadRequest)
		return
	}

	resp := map[string]any{"hovered": sess.HoverAt(x, y)}
	if click, _ := strconv.ParseBool(q.Get("click")); click {
		if n, ok := sess.ClickAt(x, y); ok {
			resp["clicked"] = map[string]any{"id": n.ID, "name": n.Name, "category": n.Category}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	q := r.URL.Query()
	width, errW := strconv.ParseFloat(q.Get("w"), 64)
	height, errH := strconv.ParseFloat(q.Get("h"), 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		http.Error(w, "w and h must be positive numbers", http.StatusBadRequest)
		return
	}
	sess.Resize(width, height)
	w.WriteHeader(http.StatusNoContent)
}

// frameRenderer maps "frame.png" style names to a renderer.
func frameRenderer(w http.ResponseWriter, file string) (render.Renderer, string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(file), "."))
	if strings.TrimSuffix(file, path.Ext(file)) != "frame" {
		http.Error(w, "unknown frame "+file, http.StatusNotFound)
		return nil, "", false
	}
	renderer, err := render.GetRenderer(ext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, "", false
	}
	return renderer, ext, true
}

func (s *Server) renderOptions(r *http.Request, format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	opts.Seed = s.cfg.Seed
	q := r.URL.Query()
	if v, err := strconv.ParseBool(q.Get("labels")); err == nil {
		opts.ShowLabels = v
	}
	if v, err := strconv.ParseBool(q.Get("legend")); err == nil {
		opts.ShowLegend = v
	}
	if v, err := strconv.ParseBool(q.Get("grid")); err == nil {
		opts.ShowGrid = v
	}
	opts.Indent = q.Has("pretty")
	return opts
}

func floatParam(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownDepartment), errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
