package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"studyroom/internal/domain"
)

// SendFriendRequest creates a pending request from the actor. Non-exempt
// actors are gated by the friend quota, and at most one pending request may
// exist per ordered (from, to) pair.
func (e *Engine) SendFriendRequest(ctx context.Context, toUserID uuid.UUID, message *string, actor domain.User) (domain.FriendRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if toUserID == actor.ID {
		return domain.FriendRequest{}, fmt.Errorf("cannot befriend yourself: %w", domain.ErrInvalidInput)
	}
	if !e.exempt() && !e.limiter.CanAddFriend() {
		return domain.FriendRequest{}, domain.ErrQuotaExceeded
	}
	for _, r := range e.requests {
		if r.FromUserID == actor.ID && r.ToUserID == toUserID && r.Status == domain.RequestPending {
			return domain.FriendRequest{}, domain.ErrDuplicateRequest
		}
	}

	req := &domain.FriendRequest{
		ID:         uuid.New(),
		FromUserID: actor.ID,
		ToUserID:   toUserID,
		Status:     domain.RequestPending,
		Timestamp:  e.clock.Now(),
		Message:    message,
	}
	e.requests = append(e.requests, req)
	if !e.exempt() {
		e.limiter.IncrementFriendCount()
	}

	e.persist(ctx)
	return *req, nil
}

// AcceptFriendRequest marks a pending request accepted and adds the sender
// to the accepter's friend list. Acceptance is one-directional: only the
// current actor's profile is canonical here, so the sender's own list is
// never touched.
func (e *Engine) AcceptFriendRequest(ctx context.Context, requestID uuid.UUID, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := e.findRequest(requestID)
	if req == nil {
		return domain.ErrNotFound
	}
	if req.ToUserID != actor.ID {
		return domain.ErrAccessDenied
	}
	if req.Status != domain.RequestPending {
		return fmt.Errorf("request already %s: %w", req.Status, domain.ErrInvalidInput)
	}

	req.Status = domain.RequestAccepted
	if actor.ID == e.currentUser.ID && !containsID(e.currentUser.Friends, req.FromUserID) {
		e.currentUser.Friends = append(e.currentUser.Friends, req.FromUserID)
	}
	e.appendNotificationLocked(req.FromUserID, "友達リクエストが承認されました", e.clock.Now())

	e.persist(ctx)
	return nil
}

// RejectFriendRequest marks a pending request rejected; terminal.
func (e *Engine) RejectFriendRequest(ctx context.Context, requestID uuid.UUID, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := e.findRequest(requestID)
	if req == nil {
		return domain.ErrNotFound
	}
	if req.ToUserID != actor.ID {
		return domain.ErrAccessDenied
	}
	if req.Status != domain.RequestPending {
		return fmt.Errorf("request already %s: %w", req.Status, domain.ErrInvalidInput)
	}

	req.Status = domain.RequestRejected
	e.persist(ctx)
	return nil
}

// RemoveFriend drops the friend from the current actor's list. The friend
// counter is deliberately untouched; the quota counts additions, not the
// list size.
func (e *Engine) RemoveFriend(ctx context.Context, friendID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, id := range e.currentUser.Friends {
		if id == friendID {
			e.currentUser.Friends = append(e.currentUser.Friends[:i], e.currentUser.Friends[i+1:]...)
			e.persist(ctx)
			return nil
		}
	}
	return nil
}

// CreateFriendGroup creates a group whose member set is the actor plus the
// given ids, deduplicated.
func (e *Engine) CreateFriendGroup(ctx context.Context, name string, description *string, memberIDs []uuid.UUID, actor domain.User) (domain.FriendGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		return domain.FriendGroup{}, fmt.Errorf("group name is required: %w", domain.ErrInvalidInput)
	}

	members := []uuid.UUID{actor.ID}
	for _, id := range memberIDs {
		if !containsID(members, id) {
			members = append(members, id)
		}
	}

	group := domain.FriendGroup{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Members:     members,
		CreatedBy:   actor.ID,
		CreatedAt:   e.clock.Now(),
	}
	e.groups = append(e.groups, group)

	e.persist(ctx)
	return group, nil
}

// PendingFriendRequests returns requests awaiting the actor's decision.
func (e *Engine) PendingFriendRequests(actor domain.User) []domain.FriendRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.FriendRequest
	for _, r := range e.requests {
		if r.ToUserID == actor.ID && r.Status == domain.RequestPending {
			out = append(out, *r)
		}
	}
	return out
}

// FriendGroups returns copies of all groups.
func (e *Engine) FriendGroups() []domain.FriendGroup {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.FriendGroup, len(e.groups))
	for i, g := range e.groups {
		c := g
		c.Members = append([]uuid.UUID(nil), g.Members...)
		out[i] = c
	}
	return out
}

// Friends returns the current actor's friend ids.
func (e *Engine) Friends() []uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]uuid.UUID(nil), e.currentUser.Friends...)
}

func (e *Engine) findRequest(id uuid.UUID) *domain.FriendRequest {
	for _, r := range e.requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
