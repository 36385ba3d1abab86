package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/JonMunkholm/prfbulk/internal/logging"
)

const (
	headerJobID        = "X-Job-ID"
	headerErrorCount   = "X-Error-Count"
	headerWarningCount = "X-Warning-Count"

	// multipartOverhead leaves room for form fields and part headers on top
	// of the file itself.
	multipartOverhead = 1 << 20

	// formMemory is how much of a multipart body is kept in memory before
	// spilling to temp files.
	formMemory = 8 << 20
)

var errNoFile = errors.New("no file provided")

// RunReport is the JSON body of a failed run.
type RunReport struct {
	JobID    string         `json:"jobId"`
	Phase    core.Phase     `json:"phase"`
	Counts   core.RunCounts `json:"counts"`
	Errors   []core.Message `json:"errors"`
	Warnings []core.Message `json:"warnings"`
}

func newRunReport(res *core.RunResult) RunReport {
	rep := RunReport{
		JobID:    res.JobID,
		Phase:    res.Phase,
		Counts:   res.Counts,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}
	if rep.Errors == nil {
		rep.Errors = []core.Message{}
	}
	if rep.Warnings == nil {
		rep.Warnings = []core.Message{}
	}
	return rep
}

// handleCreateRun converts an uploaded file. A complete run answers with the
// ZIP archive; a failed run answers 422 with its errors.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	res, ok := s.executeRun(w, r)
	if !ok {
		return
	}

	setRunHeaders(w, res)
	if res.Failed() {
		writeJSON(w, http.StatusUnprocessableEntity, newRunReport(res))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, archiveName(res)))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Artifact); err != nil {
		logging.FromContext(r.Context()).Warn("write archive", "job_id", res.JobID, "error", err)
	}
}

// handleRunErrors converts an uploaded file and returns only its error
// report as CSV, for users fixing a file that failed or lost rows.
func (s *Server) handleRunErrors(w http.ResponseWriter, r *http.Request) {
	res, ok := s.executeRun(w, r)
	if !ok {
		return
	}

	setRunHeaders(w, res)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ErrorReportName))
	w.WriteHeader(http.StatusOK)
	w.Write(core.RenderReport(res.Errors))
}

// handleRunQueueStatus returns the current state of the run limiter.
func (s *Server) handleRunQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.limiter.Status())
}

// executeRun reads the upload, waits for a run slot and runs a fresh
// pipeline. It writes the response itself and returns false on any
// environment error.
func (s *Server) executeRun(w http.ResponseWriter, r *http.Request) (*core.RunResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, core.MaxInputBytes+multipartOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("parse upload: %w", core.ErrInputTooLarge), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), http.StatusBadRequest)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	startSeq := r.FormValue("start_seq")
	if startSeq == "" {
		startSeq = s.cfg.Run.DefaultStartSeq
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	defer s.limiter.Release()

	p := core.NewPipeline(core.Options{
		Workers:  s.cfg.Run.Workers,
		Packager: s.packager,
	})

	res, err := p.RunFile(r.Context(), header.Filename, file, startSeq)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return res, true
}

func setRunHeaders(w http.ResponseWriter, res *core.RunResult) {
	w.Header().Set(headerJobID, res.JobID)
	w.Header().Set(headerErrorCount, strconv.Itoa(len(res.Errors)))
	w.Header().Set(headerWarningCount, strconv.Itoa(len(res.Warnings)))
}

// archiveName is prf_bulk_import_{YYYYMMDD}_{first}-{last}.zip, without the
// range when the run produced no output files.
func archiveName(res *core.RunResult) string {
	m := res.Manifest
	if m == nil {
		return "prf_bulk_import.zip"
	}
	date := strings.ReplaceAll(m.DateUTC, "-", "")
	if m.SequenceRangeStart == "" {
		return fmt.Sprintf("prf_bulk_import_%s.zip", date)
	}
	return fmt.Sprintf("prf_bulk_import_%s_%s-%s.zip", date, m.SequenceRangeStart, m.SequenceRangeEnd)
}
