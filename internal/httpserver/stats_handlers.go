package httpserver

import (
	"net/http"
	"strings"

	"studyroom/internal/domain"
	"studyroom/internal/service"
)

func handleEffortStats(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := domain.Period(r.URL.Query().Get("period"))
		if !period.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be today, week or month"})
			return
		}
		var tags []string
		if raw := r.URL.Query().Get("tags"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}
		writeJSON(w, http.StatusOK, engine.EffortStats(tags, period))
	}
}

func handleTagStats(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := domain.Period(r.URL.Query().Get("period"))
		if !period.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be today, week or month"})
			return
		}
		writeJSON(w, http.StatusOK, engine.TagStats(period))
	}
}

func handleListRecords(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, engine.Records(actor.ID))
	}
}
