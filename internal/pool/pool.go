package pool

import "github.com/KitotsuMolina/Kitowall/internal/domain"

// Pool is the flat, weighted list of local paths a rotation picks from.
// A path appears once per unit of its source weight.
type Pool struct {
	Paths []string
	// Stats maps each source name to the number of candidates it reported
	Stats map[string]int

	owners map[string]owner
}

type owner struct {
	source    domain.Source
	candidate domain.Candidate
}

func newPool() *Pool {
	return &Pool{Stats: map[string]int{}, owners: map[string]owner{}}
}

// Len returns the number of entries, weighting included
func (p *Pool) Len() int {
	return len(p.Paths)
}

// Lookup returns the source and candidate behind a pool path
func (p *Pool) Lookup(path string) (domain.Source, domain.Candidate, bool) {
	o, ok := p.owners[path]
	return o.source, o.candidate, ok
}

func (p *Pool) add(path string, weight int, src domain.Source, c domain.Candidate) {
	for range weight {
		p.Paths = append(p.Paths, path)
	}
	if _, ok := p.owners[path]; !ok {
		p.owners[path] = owner{source: src, candidate: c}
	}
}
