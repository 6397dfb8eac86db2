package pool

import (
	"context"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// SourceReport describes one pool source for status output
type SourceReport struct {
	Name          string              `json:"name"`
	Weight        int                 `json:"weight"`
	MaxCandidates int                 `json:"maxCandidates,omitempty"`
	Candidates    int                 `json:"candidates"`
	Status        domain.SourceStatus `json:"status"`
}

// Status reports every configured pool source.
// With refresh set, each source index is rebuilt first.
func (a *Aggregator) Status(ctx context.Context, refresh bool) ([]SourceReport, error) {
	if !a.Enabled() {
		return nil, apperr.PoolNotEnabled()
	}

	reports := make([]SourceReport, 0, len(a.cfg.Sources))
	for _, spec := range a.cfg.PoolSources() {
		r := SourceReport{Name: spec.Name, Weight: spec.Weight, MaxCandidates: spec.MaxCandidates}

		src, ok := a.sources.Source(spec.Name)
		if !ok {
			r.Status.LastError = "not a configured pack"
			reports = append(reports, r)
			continue
		}

		if refresh {
			if _, err := src.Refresh(ctx); err != nil {
				a.logger.Warn("Failed to refresh source", zap.String("source", spec.Name), zap.Error(err))
			}
		}

		st, err := src.Status(ctx)
		if err != nil {
			st.LastError = err.Error()
		}
		r.Status = st
		r.Candidates = st.Candidates
		reports = append(reports, r)
	}
	return reports, nil
}
