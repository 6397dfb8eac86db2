package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
)

// Validate checks a pack against the rules of its type
func (p PackConfig) Validate() error {
	local := p.Type == PackLocal
	static := p.Type == PackStaticURL
	generic := p.Type == PackGenericJSON

	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required,
			validation.In(PackLocal, PackStaticURL, PackGenericJSON).Error("unsupported pack type")),
		validation.Field(&p.Paths, validation.When(local, validation.Required)),
		validation.Field(&p.URL,
			validation.When(static && len(p.URLs) == 0, validation.Required.Error("url or urls is required")),
			is.URL),
		validation.Field(&p.URLs, validation.Each(is.URL)),
		validation.Field(&p.Endpoint, validation.When(generic, validation.Required), is.URL),
		validation.Field(&p.ImagePath, validation.When(generic, validation.Required)),
		validation.Field(&p.Count, validation.Max(MaxPackCandidates)),
		validation.Field(&p.CandidateLimit, validation.Max(MaxPackCandidates)),
	)
}

// Validate checks the normalized configuration
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeManual, ModeRotate)),
		validation.Field(&c.RotationIntervalSeconds, validation.Min(1)),
		validation.Field(&c.Cache),
		validation.Field(&c.Pool),
		validation.Field(&c.StateDir, validation.Required),
	)
}

// Validate checks the cache section
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.DownloadDir, validation.Required),
		validation.Field(&c.MaxMB, validation.Min(1)),
		validation.Field(&c.DefaultTTLSec, validation.Min(1)),
	)
}

// Validate checks the pool section
func (p PoolConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Dedupe, validation.In(domain.DedupePath, domain.DedupeURL, domain.DedupeHash)),
		validation.Field(&p.Sources),
	)
}

// Validate checks one pool entry
func (s PoolSourceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Weight, validation.Min(1)),
		validation.Field(&s.MaxCandidates, validation.Min(0)),
	)
}
