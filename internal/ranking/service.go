// Package ranking scores a batch of candidates for one persona, then filters, sorts and
// paginates the explained results.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prospect-scorer/internal/parsing"
	"github.com/jonathan/prospect-scorer/internal/scoring"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Defaults for Options.
const (
	DefaultParallelThreshold = 16
	DefaultPageSize          = 20
	DefaultMaxPageSize       = 100
)

// Options configures a Service. Zero values fall back to the defaults above.
type Options struct {
	// Workers bounds concurrent scoring. Defaults to GOMAXPROCS.
	Workers int
	// ParallelThreshold is the smallest number of stale candidates scored in parallel.
	ParallelThreshold int
	MaxPageSize       int
	Logger            *zap.Logger
	Metrics           *Metrics
}

// DefaultOptions returns the default ranking options.
func DefaultOptions() Options {
	return Options{
		Workers:           runtime.GOMAXPROCS(0),
		ParallelThreshold: DefaultParallelThreshold,
		MaxPageSize:       DefaultMaxPageSize,
	}
}

// Request is a single rank call.
type Request struct {
	JobID      string
	ICP        *types.ICP
	Persona    *types.Persona
	Candidates []*types.Candidate
	Filters    types.CandidateFilters
	Page       int
	PageSize   int
}

// Service ranks candidates using a scoring engine.
type Service struct {
	engine *scoring.Engine
	opts   Options
	logger *zap.Logger
}

// NewService creates a ranking service.
func NewService(engine *scoring.Engine, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = defaults.ParallelThreshold
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaults.MaxPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, opts: opts, logger: logger}
}

// Rank scores every unscored or stale candidate, then filters, sorts and paginates.
//
// Scoring records are written back onto the request's candidates, so a second call with
// unchanged inputs reuses them. If ctx is done before every stale candidate is scored, the
// unscored ones are left out and the page is marked incomplete; no error is returned.
// Bad arguments fail with ErrInvalidArgument, a persona from another ICP with
// ErrLineageMismatch, and a scorer bug with ErrInvariantViolation.
func (s *Service) Rank(ctx context.Context, req Request) (*types.CandidatePage, error) {
	return s.rank(ctx, req, false)
}

// RankAll is Rank without pagination: the returned page holds every candidate that
// passes the filters, in rank order. Page and PageSize in req are ignored.
func (s *Service) RankAll(ctx context.Context, req Request) (*types.CandidatePage, error) {
	req.Page = 1
	req.PageSize = s.opts.MaxPageSize
	page, err := s.rank(ctx, req, true)
	if err != nil {
		return nil, err
	}
	page.PageSize = len(page.Candidates)
	return page, nil
}

func (s *Service) rank(ctx context.Context, req Request, all bool) (page *types.CandidatePage, err error) {
	ctx, span := otel.Tracer("prospect-scorer/ranking").Start(ctx, "ranking.Rank")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	start := time.Now()

	filter, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	jobID := req.JobID
	if jobID == "" {
		jobID = req.ICP.JobID
	}
	span.SetAttributes(
		attribute.String("job.id", jobID),
		attribute.String("persona.id", req.Persona.ID),
		attribute.Int("candidates.count", len(req.Candidates)),
	)

	fingerprint, err := s.engine.Fingerprint(req.ICP, req.Persona)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint scoring inputs: %w", err)
	}

	stale := make([]int, 0, len(req.Candidates))
	for i, c := range req.Candidates {
		if c == nil {
			continue
		}
		if isStale(c, req.Persona.ID, fingerprint) {
			stale = append(stale, i)
		}
	}
	reused := countNonNil(req.Candidates) - len(stale)

	s.logger.Debug("ranking candidates",
		zap.String("job_id", jobID),
		zap.String("persona_id", req.Persona.ID),
		zap.Int("candidates", len(req.Candidates)),
		zap.Int("stale", len(stale)),
	)

	scored, err := s.scoreStale(ctx, jobID, req, fingerprint, stale)
	if err != nil {
		s.logger.Error("scoring aborted", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	views := make([]types.ScoredCandidate, 0, len(req.Candidates))
	unscorable := 0
	for _, c := range req.Candidates {
		if c == nil || isStale(c, req.Persona.ID, fingerprint) {
			continue
		}
		view := newView(c)
		if view.Unscorable {
			unscorable++
		}
		if filter.matches(&view, req.Persona.ID) {
			views = append(views, view)
		}
	}
	sortViews(views)

	skipped := len(stale) - scored
	total := len(views)
	if !all {
		views = paginate(views, req.Page, req.PageSize)
	}
	page = &types.CandidatePage{
		JobID:      jobID,
		PersonaID:  req.Persona.ID,
		Candidates: views,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Incomplete: skipped > 0,
		Skipped:    skipped,
		Unscorable: unscorable,
	}

	s.opts.Metrics.AddCandidates(OutcomeReused, reused)
	s.opts.Metrics.AddCandidates(OutcomeSkipped, skipped)
	s.opts.Metrics.ObserveRankDuration(time.Since(start).Seconds())
	if page.Incomplete {
		s.opts.Metrics.IncIncomplete()
		s.logger.Warn("ranking incomplete",
			zap.String("job_id", jobID),
			zap.Int("skipped", skipped),
			zap.NamedError("cause", ctx.Err()),
		)
	}
	span.SetAttributes(
		attribute.Int("candidates.total", page.Total),
		attribute.Bool("rank.incomplete", page.Incomplete),
	)
	s.logger.Debug("ranked candidates",
		zap.String("job_id", jobID),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Candidates)),
		zap.Int("unscorable", unscorable),
		zap.Duration("elapsed", time.Since(start)),
	)
	return page, nil
}

// Explain scores one candidate for the persona without modifying it.
func (s *Service) Explain(icp *types.ICP, persona *types.Persona, candidate *types.Candidate) (*types.ScoredCandidate, error) {
	if icp == nil || persona == nil || candidate == nil {
		return nil, types.InvalidArgument("icp, persona and candidate are required")
	}
	if persona.ICPID != icp.ID {
		return nil, types.LineageMismatch("persona %q derives from icp %q, not %q", persona.ID, persona.ICPID, icp.ID)
	}
	fingerprint, err := s.engine.Fingerprint(icp, persona)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint scoring inputs: %w", err)
	}
	record, err := s.scoreOne(icp.JobID, icp, persona, candidate, fingerprint)
	if err != nil {
		return nil, err
	}
	view := *candidate
	view.Scoring = record
	scored := newView(&view)
	scored.Rank = 1
	return &scored, nil
}

func (s *Service) validate(req Request) (*candidateFilter, error) {
	if req.ICP == nil {
		return nil, types.InvalidArgument("icp is required")
	}
	if req.Persona == nil {
		return nil, types.InvalidArgument("persona is required")
	}
	if err := req.ICP.Validate(); err != nil {
		return nil, types.InvalidArgumentCause(err, "invalid icp")
	}
	if err := req.Persona.Validate(); err != nil {
		return nil, types.InvalidArgumentCause(err, "invalid persona")
	}
	if req.Persona.ICPID != req.ICP.ID {
		return nil, types.LineageMismatch("persona %q derives from icp %q, not %q", req.Persona.ID, req.Persona.ICPID, req.ICP.ID)
	}
	if req.JobID != "" && req.ICP.JobID != "" && req.JobID != req.ICP.JobID {
		return nil, types.InvalidArgument("icp %q belongs to job %q, not %q", req.ICP.ID, req.ICP.JobID, req.JobID)
	}
	if req.Page < 1 {
		return nil, types.InvalidArgument("page must be >= 1, got %d", req.Page)
	}
	if req.PageSize <= 0 {
		return nil, types.InvalidArgument("page_size must be > 0, got %d", req.PageSize)
	}
	if req.PageSize > s.opts.MaxPageSize {
		return nil, types.InvalidArgument("page_size must be <= %d, got %d", s.opts.MaxPageSize, req.PageSize)
	}
	return compileFilters(req.Filters)
}

// scoreStale scores the candidates at the stale indexes and returns how many were scored.
// Each worker writes only to its own candidate.
func (s *Service) scoreStale(ctx context.Context, jobID string, req Request, fingerprint string, stale []int) (int, error) {
	done := make([]bool, len(stale))
	score := func(k int) error {
		c := req.Candidates[stale[k]]
		record, err := s.scoreOne(jobID, req.ICP, req.Persona, c, fingerprint)
		if err != nil {
			return err
		}
		c.Scoring = record
		done[k] = true
		if record.Unscorable {
			s.logger.Warn("candidate could not be scored",
				zap.String("linkedin_url", c.LinkedInURL),
				zap.String("reason", record.UnscorableReason),
			)
			s.opts.Metrics.AddCandidates(OutcomeUnscorable, 1)
		} else {
			s.opts.Metrics.AddCandidates(OutcomeScored, 1)
		}
		return nil
	}

	if len(stale) < s.opts.ParallelThreshold || s.opts.Workers <= 1 {
		for k := range stale {
			if ctx.Err() != nil {
				break
			}
			if err := score(k); err != nil {
				return 0, err
			}
		}
		return countTrue(done), nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for k := range stale {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			return score(k)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return countTrue(done), nil
}

// scoreOne returns a scoring record for one candidate. Bad candidate data yields an
// unscorable record; only invariant violations are returned as errors.
func (s *Service) scoreOne(jobID string, icp *types.ICP, persona *types.Persona, c *types.Candidate, fingerprint string) (*types.ScoringRecord, error) {
	if reason := unscorableReason(jobID, c); reason != "" {
		return s.engine.Unscorable(persona, fingerprint, reason), nil
	}
	record, err := s.engine.ScoreCandidate(icp, persona, c, fingerprint)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, types.ErrInvariantViolation) {
		return nil, fmt.Errorf("candidate %s: %w", c.LinkedInURL, err)
	}
	return s.engine.Unscorable(persona, fingerprint, err.Error()), nil
}

func unscorableReason(jobID string, c *types.Candidate) string {
	if err := c.Validate(); err != nil {
		return "missing linkedin_url"
	}
	if jobID != "" && c.JobID != "" && c.JobID != jobID {
		return fmt.Sprintf("belongs to another job (%s)", c.JobID)
	}
	for _, field := range []string{
		c.ResultSnippet, c.ResultTitle,
		types.Deref(c.InferredTitle), types.Deref(c.InferredCompany), types.Deref(c.InferredLocation),
	} {
		if !utf8.ValidString(field) {
			return "malformed text (invalid UTF-8)"
		}
	}
	return ""
}

func isStale(c *types.Candidate, personaID, fingerprint string) bool {
	return !c.IsScored() || c.Scoring.PersonaID != personaID || c.Scoring.Fingerprint != fingerprint
}

// newView copies a scored candidate into its ranked form, back-filling title and company
// from the result title the same way extraction does.
func newView(c *types.Candidate) types.ScoredCandidate {
	view := types.ScoredCandidate{
		ID:               c.ID,
		JobID:            c.JobID,
		LinkedInURL:      c.LinkedInURL,
		InferredName:     types.StringPtr(types.Deref(c.InferredName)),
		InferredTitle:    types.StringPtr(types.Deref(c.InferredTitle)),
		InferredLocation: types.StringPtr(types.Deref(c.InferredLocation)),
		InferredCompany:  types.StringPtr(types.Deref(c.InferredCompany)),
		ResultSnippet:    c.ResultSnippet,
	}
	if c.ResultTitle != "" && (view.InferredName == nil || view.InferredTitle == nil || view.InferredCompany == nil) {
		parsed := parsing.ParseResultTitle(c.ResultTitle)
		if view.InferredName == nil {
			view.InferredName = types.StringPtr(parsed.Name)
		}
		if view.InferredTitle == nil {
			view.InferredTitle = types.StringPtr(parsed.Title)
		}
		if view.InferredCompany == nil {
			view.InferredCompany = types.StringPtr(parsed.Company)
		}
	}
	if c.Scoring != nil {
		view.Scores = c.Scoring.Scores
		view.Explainability = c.Scoring.Explainability
		view.Unscorable = c.Scoring.Unscorable
		view.UnscorableReason = c.Scoring.UnscorableReason
	}
	return view
}

// sortViews orders by final score descending, then URL ascending, then ID, and assigns ranks.
func sortViews(views []types.ScoredCandidate) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.Scores.Final != b.Scores.Final {
			return a.Scores.Final > b.Scores.Final
		}
		if a.LinkedInURL != b.LinkedInURL {
			return a.LinkedInURL < b.LinkedInURL
		}
		return a.ID < b.ID
	})
	for i := range views {
		views[i].Rank = i + 1
	}
}

// paginate returns the 1-indexed page. A page past the end is empty, never nil.
// The page bound is checked before multiplying so huge page numbers cannot overflow.
func paginate(views []types.ScoredCandidate, page, pageSize int) []types.ScoredCandidate {
	pages := (len(views) + pageSize - 1) / pageSize
	if page-1 >= pages {
		return []types.ScoredCandidate{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(views))
	return views[start:end]
}

func countNonNil(candidates []*types.Candidate) int {
	n := 0
	for _, c := range candidates {
		if c != nil {
			n++
		}
	}
	return n
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
