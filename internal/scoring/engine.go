package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/jonathan/prospect-scorer/internal/features"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Engine runs extraction, the factor scorers and aggregation for single candidates.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg        Config
	scorers    []Scorer
	aggregator *Aggregator
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithScorer replaces the built-in scorer for s.Factor().
func WithScorer(s Scorer) EngineOption {
	return func(e *Engine) {
		for i, existing := range e.scorers {
			if existing.Factor() == s.Factor() {
				e.scorers[i] = s
				return
			}
		}
	}
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aggregator, err := NewAggregator(cfg.Weights, cfg.Thresholds.MaxMatchedKeywords)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        cfg,
		scorers:    NewScorers(cfg.Thresholds),
		aggregator: aggregator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score runs every factor scorer over fs.
func (e *Engine) Score(fs *features.FeatureSet) (Tuple, Matches) {
	var tuple Tuple
	var matches Matches
	for _, scorer := range e.scorers {
		result := scorer.Score(fs)
		tuple[scorer.Factor()] = result.Value
		matches[scorer.Factor()] = result.Matched
	}
	return tuple, matches
}

// Aggregate combines a tuple into a final score and explanation.
func (e *Engine) Aggregate(tuple Tuple, matches Matches) (float64, types.Explainability, error) {
	return e.aggregator.Aggregate(tuple, matches)
}

// ScoreCandidate extracts, scores and aggregates one candidate. The returned record is
// stamped with the persona ID and fingerprint. The candidate is not modified.
func (e *Engine) ScoreCandidate(icp *types.ICP, persona *types.Persona, candidate *types.Candidate, fingerprint string) (*types.ScoringRecord, error) {
	fs, err := features.Extract(icp, persona, candidate)
	if err != nil {
		return nil, err
	}

	tuple, matches := e.Score(fs)
	final, explanation, err := e.Aggregate(tuple, matches)
	if err != nil {
		return nil, err
	}

	return &types.ScoringRecord{
		PersonaID:   persona.ID,
		Fingerprint: fingerprint,
		Scores: types.Scores{
			Semantic: tuple[FactorSemantic],
			Role:     tuple[FactorRole],
			Industry: tuple[FactorIndustry],
			Geo:      tuple[FactorGeo],
			Final:    final,
		},
		Explainability: explanation,
	}, nil
}

// Unscorable returns the zero-score record used when a candidate could not be scored.
func (e *Engine) Unscorable(persona *types.Persona, fingerprint, reason string) *types.ScoringRecord {
	contributions := make(map[string]float64, NumFactors)
	for _, f := range Factors {
		contributions[f.String()] = 0
	}
	return &types.ScoringRecord{
		PersonaID:   persona.ID,
		Fingerprint: fingerprint,
		Explainability: types.Explainability{
			KeywordsMatched:      []string{},
			FeatureContributions: contributions,
		},
		Unscorable:       true,
		UnscorableReason: reason,
	}
}

// Fingerprint identifies the scoring inputs shared by a batch: the ICP, the persona and
// the engine configuration. A candidate scored under a different fingerprint is stale.
func (e *Engine) Fingerprint(icp *types.ICP, persona *types.Persona) (string, error) {
	payload, err := json.Marshal(struct {
		ICP     *types.ICP     `json:"icp"`
		Persona *types.Persona `json:"persona"`
		Config  Config         `json:"config"`
	}{icp, persona, e.cfg})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
