package telegram

import (
	"sync"

	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipeclient"
)

// Sessions keeps one meal plan per chat. Plans live for the lifetime of
// the process.
type Sessions struct {
	client recipeclient.Client

	mu       sync.Mutex
	planners map[int64]*planner.Planner
}

// NewSessions creates an empty session registry.
func NewSessions(client recipeclient.Client) *Sessions {
	return &Sessions{client: client, planners: make(map[int64]*planner.Planner)}
}

// Planner returns the chat's planner, creating an empty plan on first use.
func (s *Sessions) Planner(chatID int64) *planner.Planner {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.planners[chatID]
	if !ok {
		p = planner.NewPlanner(s.client, mealplan.NewStore())
		s.planners[chatID] = p
	}
	return p
}

// Len returns the number of chats with a plan.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.planners)
}
