package service

import (
	"context"
	"fmt"

	"studyroom/internal/domain"
)

type ProfileUpdateInput struct {
	Name         string
	Bio          string
	Goal         string
	ProfileImage string
	Avatar       []byte
}

// CurrentUser returns a copy of the canonical current actor.
func (e *Engine) CurrentUser() domain.User {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return snapshot(e.currentUser)
}

// UpdateProfile edits the current actor's mutable fields. The id never
// changes, and snapshots already embedded in rooms and messages keep their
// old values.
func (e *Engine) UpdateProfile(ctx context.Context, in ProfileUpdateInput) (domain.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Name == "" {
		return domain.User{}, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}

	e.currentUser.Name = in.Name
	e.currentUser.Bio = in.Bio
	e.currentUser.Goal = in.Goal
	if in.ProfileImage != "" {
		e.currentUser.ProfileImage = in.ProfileImage
	}
	if in.Avatar != nil {
		e.currentUser.AvatarData = append([]byte(nil), in.Avatar...)
	}
	e.currentUser.LastSeen = e.clock.Now()

	e.persist(ctx)
	return snapshot(e.currentUser), nil
}

// SetOnline flips the current actor's presence flag.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentUser.IsOnline = online
	e.currentUser.LastSeen = e.clock.Now()
	e.persist(ctx)
}
