package main

import (
	"github.com/strata-vcs/strata/pkg/ai"
	"github.com/strata-vcs/strata/pkg/repo"
)

// newAIClient builds a Gemini client using the merged configuration's
// ai.model and the key from the environment or .env.
func newAIClient(r *repo.Repo) (*ai.Client, error) {
	model := ai.DefaultModel
	if cfg, err := r.LoadMergedConfig(); err == nil {
		if m, ok := cfg.Get("ai.model"); ok && m != "" {
			model = m
		}
	}
	return ai.NewFromEnv(model)
}
