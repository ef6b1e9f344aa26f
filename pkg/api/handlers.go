package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/viewsplit/pkg/buildinfo"
	"github.com/matzehuels/viewsplit/pkg/errors"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/observability"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
	"github.com/matzehuels/viewsplit/pkg/render"
)

// SplitRequest is the body of POST /v1/split. Dataset uses the pkg/io format.
type SplitRequest struct {
	Dataset json.RawMessage   `json:"dataset"`
	Options *pipeline.Options `json:"options,omitempty"`
}

// PlanRequest is the body of POST /v1/plan.
type PlanRequest struct {
	Size    []int64           `json:"size"`
	Options *pipeline.Options `json:"options,omitempty"`
}

// PlanResponse is the body answered by POST /v1/plan.
type PlanResponse struct {
	*pipeline.PlanResult
	TileCount int `json:"tile_count"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	plan, err := s.runner.Plan(req.Size, s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, PlanResponse{PlanResult: plan, TileCount: plan.TileCount()})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Dataset) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "dataset is required"))
		return
	}

	ds, err := splitio.ReadDataset(bytes.NewReader(req.Dataset))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := s.options(req.Options)
	opts.Formats = nil
	opts.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), ds, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	run, err := s.runs.Create(r.Context(), result)
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store run"))
		return
	}
	w.Header().Set("Location", "/v1/runs/"+run.ID)
	respond(w, http.StatusCreated, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, _, ok := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		s.notFound(w, r)
		return
	}
	respond(w, http.StatusOK, run)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		s.notFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := splitio.WriteResult(res, &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		s.notFound(w, r)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatDOT
	}
	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := "text/vnd.graphviz"
	if format == render.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

// options returns the request options, or the server defaults when the
// request has none.
func (s *Server) options(req *pipeline.Options) pipeline.Options {
	if req == nil {
		return s.Defaults
	}
	return *req
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, errors.New(errors.ErrCodeNotFound, "run %q not found", chi.URLParam(r, "id")))
}

// fail answers err with the status of its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || errors.IsFatal(err) {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	respond(w, status, ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(err error) int {
	if errors.IsFatal(err) {
		return http.StatusUnprocessableEntity
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeAlignment, errors.ErrCodeOverlapExceedsSize:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
