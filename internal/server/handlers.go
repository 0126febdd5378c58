package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/export"
	"github.com/jonathan/prospect-scorer/internal/logger"
	"github.com/jonathan/prospect-scorer/internal/ranking"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// jobTarget is a loaded job bundle with the persona a request asked for.
type jobTarget struct {
	jobID   uuid.UUID
	bundle  *types.JobBundle
	persona *types.Persona
}

// handleListCandidates ranks a job's candidates for a persona and returns one page.
// Query: persona_id (required), page, page_size, min_score, max_score, location,
// company, title_pattern.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	target, err := s.loadTarget(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	query := r.URL.Query()
	page, err := intParam(query.Get("page"), "page", 1)
	if err != nil {
		s.fail(w, err)
		return
	}
	pageSize, err := intParam(query.Get("page_size"), "page_size", s.defaultPageSize)
	if err != nil {
		s.fail(w, err)
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.ranker.Rank(r.Context(), s.rankRequest(target, filters, page, pageSize))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.saveScores(r.Context(), target)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleExplainCandidate returns the factor breakdown for one candidate.
// Query: persona_id and linkedin_url (both required).
func (s *Server) handleExplainCandidate(w http.ResponseWriter, r *http.Request) {
	target, err := s.loadTarget(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	url := r.URL.Query().Get("linkedin_url")
	if url == "" {
		s.fail(w, &ErrValidation{Field: "linkedin_url", Message: "is required"})
		return
	}
	candidate, err := target.bundle.FindCandidate(url)
	if err != nil {
		s.fail(w, &ErrNotFound{Resource: "candidate", ID: url})
		return
	}

	scored, err := s.ranker.Explain(&target.bundle.ICP, target.persona, candidate)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, scored)
}

// handleExportCSV ranks every candidate of a job for a persona and returns them as CSV.
// Query: persona_id (required) plus the list filters.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	target, err := s.loadTarget(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.ranker.RankAll(r.Context(), s.rankRequest(target, filters, 1, 0))
	if err != nil {
		s.fail(w, err)
		return
	}
	if result.Incomplete {
		s.errorResponse(w, http.StatusServiceUnavailable,
			fmt.Sprintf("ranking interrupted with %d candidates unscored", result.Skipped))
		return
	}
	s.saveScores(r.Context(), target)

	content, err := export.Candidates(result.Candidates, export.FormatCSV)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="candidates-%s.csv"`, target.jobID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.logger.Warn("failed to write CSV response", zap.Error(err))
	}
}

// loadTarget resolves the job_id path value and persona_id query parameter.
func (s *Server) loadTarget(r *http.Request) (*jobTarget, error) {
	idStr := chi.URLParam(r, "job_id")
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, &ErrValidation{Field: "job_id", Message: "invalid job ID format"}
	}
	personaID := r.URL.Query().Get("persona_id")
	if personaID == "" {
		return nil, &ErrValidation{Field: "persona_id", Message: "is required"}
	}

	bundle, err := s.store.GetJobBundle(r.Context(), jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if bundle == nil {
		return nil, &ErrNotFound{Resource: "job", ID: jobID.String()}
	}
	persona, err := bundle.FindPersona(personaID)
	if err != nil {
		return nil, &ErrNotFound{Resource: "persona", ID: personaID}
	}
	return &jobTarget{jobID: jobID, bundle: bundle, persona: persona}, nil
}

func (s *Server) rankRequest(target *jobTarget, filters types.CandidateFilters, page, pageSize int) ranking.Request {
	return ranking.Request{
		JobID:      target.bundle.JobID,
		ICP:        &target.bundle.ICP,
		Persona:    target.persona,
		Candidates: target.bundle.Candidates,
		Filters:    filters,
		Page:       page,
		PageSize:   pageSize,
	}
}

// saveScores persists fresh scoring records. A failure is logged, not returned: the
// ranked response is still valid and the next request rescores.
func (s *Server) saveScores(ctx context.Context, target *jobTarget) {
	updated, err := s.store.SaveCandidateScores(ctx, target.jobID, target.bundle.Candidates)
	log := logger.WithJob(s.logger, target.jobID.String(), target.persona.ID)
	if err != nil {
		log.Warn("failed to save candidate scores", zap.Error(err))
		return
	}
	log.Debug("saved candidate scores", zap.Int64("updated", updated))
}

// fail writes err with the status HTTPStatus maps it to.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

// parseFilters reads the optional filter query parameters.
func parseFilters(r *http.Request) (types.CandidateFilters, error) {
	query := r.URL.Query()
	filters := types.CandidateFilters{
		Location:     query.Get("location"),
		Company:      query.Get("company"),
		TitlePattern: query.Get("title_pattern"),
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"min_score", &filters.MinScore},
		{"max_score", &filters.MaxScore},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filters, &ErrValidation{Field: p.name, Message: "must be a number"}
		}
		*p.dst = &v
	}
	return filters, nil
}

// intParam parses an optional integer query parameter.
func intParam(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
