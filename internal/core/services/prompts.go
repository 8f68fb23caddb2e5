package services

import (
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// loadPrompt returns the template for name from store, falling back to
// the built-in default when the store is nil or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		p, err := store.Load(name)
		if err == nil && p != "" {
			return p
		}
		if err != nil {
			logger.Debug("Prompt %s: %v, using default", name, err)
		}
	}
	p, _ := driven.DefaultPrompt(name)
	return p
}
