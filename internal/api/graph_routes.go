package api

import (
	"bytes"
	"net/http"

	"github.com/kjannette/quotegraph/internal/graph"
	"github.com/kjannette/quotegraph/internal/loader"
	"go.uber.org/zap"
)

type graphResponse struct {
	Source  string         `json:"source"`
	Kind    graph.Kind     `json:"kind"`
	Drawing *graph.Drawing `json:"drawing"`
	Error   string         `json:"error,omitempty"`
}

type recordJSON struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	d, _, lastErr := s.view()
	out := graphResponse{Drawing: d, Error: lastErr}
	if s.ctrl != nil {
		snap := s.ctrl.Snapshot()
		out.Source = snap.Source
		out.Kind = snap.Kind
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetKind(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeControllerError(w, loader.ErrNoData)
		return
	}

	kind, err := graph.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeControllerError(w, err)
		return
	}
	if err := s.ctrl.SetRenderer(kind); err != nil {
		writeControllerError(w, err)
		return
	}

	d, _, _ := s.view()
	writeJSON(w, http.StatusOK, graphResponse{
		Source:  s.ctrl.Snapshot().Source,
		Kind:    kind,
		Drawing: d,
	})
}

func (s *Server) handleGraphPNG(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeControllerError(w, loader.ErrNoData)
		return
	}
	snap := s.ctrl.Snapshot()

	var (
		vp  graph.Viewport
		err error
	)
	if vp.Width, err = parseDimension(r, "width", snap.Viewport.Width); err != nil {
		writeControllerError(w, err)
		return
	}
	if vp.Height, err = parseDimension(r, "height", snap.Viewport.Height); err != nil {
		writeControllerError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := graph.EncodePNG(&buf, snap.Source, snap.Series, vp); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.log.Error("png export", zap.String("source", snap.Source), zap.Error(err))
		}
		writeControllerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeControllerError(w, loader.ErrNoData)
		return
	}
	snap := s.ctrl.Snapshot()

	out := make([]recordJSON, len(snap.Series))
	for i, rec := range snap.Series {
		out[i] = recordJSON{
			T: rec.Time.UnixMilli(),
			O: rec.Open,
			H: rec.High,
			L: rec.Low,
			C: rec.Close,
			V: rec.Volume,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
