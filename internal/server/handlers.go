package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/logger"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/dustin/go-humanize"
)

// uploadField is the multipart field holding the dataset.
const uploadField = "file"

type qualityRequest struct {
	NRows        *int     `json:"n_rows"`
	NCols        *int     `json:"n_cols"`
	MissingShare *float64 `json:"missing_share"`
}

type qualityResponse struct {
	OKForModel   bool    `json:"ok_for_model"`
	QualityScore float64 `json:"quality_score"`
	LatencyMS    float64 `json:"latency_ms"`
	Flags        any     `json:"flags"`
}

type flagsResponse struct {
	Flags analysis.Flags `json:"flags"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// httpError is a failure with a client-facing status and message.
type httpError struct {
	status int
	detail string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *httpError) {
	writeJSON(w, err.status, errorResponse{Detail: err.detail})
}

func since(t0 time.Time) float64 {
	return float64(time.Since(t0).Nanoseconds()) / 1e6
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req qualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, s.tooLarge())
			return
		}
		writeError(w, &httpError{http.StatusUnprocessableEntity, "Invalid request body: " + err.Error()})
		return
	}
	var missing []string
	if req.NRows == nil {
		missing = append(missing, "n_rows")
	}
	if req.NCols == nil {
		missing = append(missing, "n_cols")
	}
	if req.MissingShare == nil {
		missing = append(missing, "missing_share")
	}
	if len(missing) > 0 {
		writeError(w, &httpError{http.StatusUnprocessableEntity, "Field required: " + strings.Join(missing, ", ")})
		return
	}

	res := analysis.CheckAggregates(analysis.AggregateStats{
		NRows:        *req.NRows,
		NCols:        *req.NCols,
		MissingShare: *req.MissingShare,
	})
	writeJSON(w, http.StatusOK, qualityResponse{
		OKForModel:   res.OKForModel,
		QualityScore: res.QualityScore,
		LatencyMS:    since(t0),
		Flags:        res.Flags,
	})
}

func (s *Server) handleQualityFromCSV(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	rep, herr := s.analyzeUpload(w, r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	writeJSON(w, http.StatusOK, qualityResponse{
		OKForModel:   rep.OKForModel(),
		QualityScore: rep.Flags.QualityScore,
		LatencyMS:    since(t0),
		Flags:        rep.Flags,
	})
}

func (s *Server) handleQualityFlagsFromCSV(w http.ResponseWriter, r *http.Request) {
	rep, herr := s.analyzeUpload(w, r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	writeJSON(w, http.StatusOK, flagsResponse{Flags: rep.Flags})
}

// analyzeUpload reads the uploaded file and runs the full pipeline while
// holding one analysis slot.
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (*analysis.Report, *httpError) {
	log := logger.FromContext(r.Context())
	if r.ContentLength > s.cfg.MaxUploadBytes {
		return nil, s.tooLarge()
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, s.tooLarge()
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, &httpError{http.StatusUnprocessableEntity, "Field required: " + uploadField}
		default:
			return nil, &httpError{http.StatusBadRequest, "Failed to read CSV: " + err.Error()}
		}
	}
	defer file.Close()

	if err := s.slots.Acquire(r.Context(), 1); err != nil {
		log.Warn().Err(err).Msg("no analysis slot")
		return nil, &httpError{http.StatusServiceUnavailable, "Server busy, retry later"}
	}
	defer s.slots.Release(1)

	t, err := table.LoadReader(header.Filename, file, s.cfg.Ingest)
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, "Failed to read CSV: " + err.Error()}
	}
	rep, err := analysis.Analyze(t)
	if err != nil {
		if errors.Is(err, table.ErrEmptyTable) {
			return nil, &httpError{http.StatusBadRequest, "Empty CSV"}
		}
		return nil, &httpError{http.StatusBadRequest, "Failed to read CSV: " + err.Error()}
	}
	log.Debug().
		Str("file", header.Filename).
		Int("rows", rep.Rows).
		Int("cols", rep.Cols).
		Float64("quality_score", rep.Flags.QualityScore).
		Msg("analyzed upload")
	return rep, nil
}

func (s *Server) tooLarge() *httpError {
	return &httpError{
		http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Upload exceeds %s limit", humanize.IBytes(uint64(s.cfg.MaxUploadBytes))),
	}
}
