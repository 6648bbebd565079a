package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"studyroom/internal/domain"
)

// openRecordLocked starts a session for the (user, room) pair. Tags are
// copied from the room at session start, so later tag edits do not affect
// past or running sessions.
func (e *Engine) openRecordLocked(userID uuid.UUID, room *domain.Room, now time.Time) {
	e.records = append(e.records, &domain.EffortRecord{
		ID:        uuid.New(),
		UserID:    userID,
		RoomID:    room.ID,
		Tags:      append([]string(nil), room.Tags...),
		StartTime: now,
	})
}

// closeRecordLocked ends the open session for the (user, room) pair, if
// one exists. There is at most one.
func (e *Engine) closeRecordLocked(userID, roomID uuid.UUID, now time.Time) {
	for _, r := range e.records {
		if r.UserID == userID && r.RoomID == roomID && r.Open() {
			end := now
			r.EndTime = &end
			return
		}
	}
}

// EffortStats aggregates records whose tag set intersects the query tags
// and whose start time falls inside the period relative to the injected
// clock. Open sessions are measured live, so repeated calls while a session
// runs return growing totals.
func (e *Engine) EffortStats(tags []string, period domain.Period) domain.EffortStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.clock.Now()
	query := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		query[t] = struct{}{}
	}

	var stats domain.EffortStats
	for _, r := range e.records {
		if !tagsIntersect(r.Tags, query) || !period.Contains(r.StartTime, now) {
			continue
		}
		stats.TotalDuration += r.Duration(now)
		stats.SessionCount++
	}
	if stats.SessionCount > 0 {
		stats.AverageDuration = stats.TotalDuration / time.Duration(stats.SessionCount)
	}
	return stats
}

// TagStats rolls up record durations per tag for the period, most time
// first. A record with several tags counts toward each of them.
func (e *Engine) TagStats(period domain.Period) []domain.TagStat {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.clock.Now()
	totals := make(map[string]*domain.TagStat)
	for _, r := range e.records {
		if !period.Contains(r.StartTime, now) {
			continue
		}
		d := r.Duration(now)
		for _, tag := range r.Tags {
			s, ok := totals[tag]
			if !ok {
				s = &domain.TagStat{Tag: tag}
				totals[tag] = s
			}
			s.TotalDuration += d
			s.SessionCount++
		}
	}

	out := make([]domain.TagStat, 0, len(totals))
	for _, s := range totals {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDuration != out[j].TotalDuration {
			return out[i].TotalDuration > out[j].TotalDuration
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Records returns copies of the user's effort records, newest first.
func (e *Engine) Records(userID uuid.UUID) []domain.EffortRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.EffortRecord
	for _, r := range e.records {
		if r.UserID == userID {
			c := *r
			c.Tags = append([]string(nil), r.Tags...)
			if r.EndTime != nil {
				end := *r.EndTime
				c.EndTime = &end
			}
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func tagsIntersect(tags []string, query map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := query[t]; ok {
			return true
		}
	}
	return false
}
