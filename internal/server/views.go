package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/sink"
	"github.com/matzehuels/kintree/pkg/view"
)

// layoutResponse is the GET /layout body.
type layoutResponse struct {
	SnapshotHash string           `json:"snapshot_hash"`
	LayoutHash   string           `json:"layout_hash"`
	Generations  map[string]int   `json:"generations"`
	Positions    layout.Positions `json:"positions"`
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		SnapshotHash: res.SnapshotHash,
		LayoutHash:   res.LayoutHash,
		Generations:  res.Generations,
		Positions:    res.Positions,
	})
}

func (s *Server) getDrawlist(w http.ResponseWriter, r *http.Request) {
	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	t, err := transformFromQuery(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	model := render.Build(res.Graph, res.Positions, t, s.opts.Radius)
	data, err := sink.RenderJSON(model,
		sink.WithJSONViewport(s.opts.Width, s.opts.Height),
		sink.WithJSONTransform(t),
		sink.WithJSONRows(res.Generations.Rows()),
	)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// hitTestRequest is the POST /hittest body. X and Y are screen coordinates;
// the transform fields describe the client's current view.
type hitTestRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

type hitTestResponse struct {
	Hit    bool           `json:"hit"`
	Member *family.Member `json:"member,omitempty"`
}

func (s *Server) hitTest(w http.ResponseWriter, r *http.Request) {
	var req hitTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, s.logger, "decode hittest: %v", err)
		return
	}
	if req.Scale == 0 {
		req.Scale = 1
	}

	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	t := view.Transform{Scale: req.Scale, Offset: layout.Point{X: req.OffsetX, Y: req.OffsetY}}
	id, ok := view.HitTest(layout.Point{X: req.X, Y: req.Y}, res.Positions, t, s.opts.Radius)
	if !ok {
		writeJSON(w, http.StatusOK, hitTestResponse{Hit: false})
		return
	}

	for i := range res.Snapshot.Members {
		if res.Snapshot.Members[i].ID == id {
			writeJSON(w, http.StatusOK, hitTestResponse{Hit: true, Member: &res.Snapshot.Members[i]})
			return
		}
	}
	writeJSON(w, http.StatusOK, hitTestResponse{Hit: false})
}

func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	t, err := transformFromQuery(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	opts := s.opts
	opts.View = t
	opts.VizType = pipeline.VizTypeTree
	opts.Formats = []string{pipeline.FormatSVG}
	opts.HideLabels = r.URL.Query().Get("labels") == "false"
	opts.HideArrows = r.URL.Query().Get("arrows") == "false"
	if opts.Width, err = queryFloat(r, "width", opts.Width); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if opts.Height, err = queryFloat(r, "height", opts.Height); err != nil {
		writeError(w, s.logger, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), res, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(artifacts[pipeline.FormatSVG])
}

func (s *Server) renderDOT(w http.ResponseWriter, r *http.Request) {
	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	dot := nodelink.ToDOT(res.Graph, nodelink.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

// transformFromQuery reads scale/offset_x/offset_y, defaulting to the
// identity view.
func transformFromQuery(r *http.Request) (view.Transform, error) {
	t := view.NewTransform()

	scale, err := queryFloat(r, "scale", t.Scale)
	if err != nil {
		return t, err
	}
	ox, err := queryFloat(r, "offset_x", 0)
	if err != nil {
		return t, err
	}
	oy, err := queryFloat(r, "offset_y", 0)
	if err != nil {
		return t, err
	}

	t.Scale = scale
	t.Offset = layout.Point{X: ox, Y: oy}
	return t, nil
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidQueryParam(name, raw)
	}
	return v, nil
}
