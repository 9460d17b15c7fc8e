// Package http provides the trigger endpoints
package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ghstats/internal/core/version"
	"ghstats/internal/modkit/httpkit"
	perr "ghstats/internal/platform/errors"
	"ghstats/internal/platform/net/http/bind"

	stashdom "ghstats/internal/services/stash/domain"
	"ghstats/internal/services/trigger/domain"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Trigger     domain.TriggerPort
	Stasher     stashdom.StasherPort
}

type handlers struct {
	deps Deps
}

// Register mounts the trigger routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Post(r, "/trigger", h.trigger)
	httpkit.Get(r, "/summary", h.summary)
	httpkit.Get(r, "/runs", h.runs)
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

func (h *handlers) trigger(r *http.Request) (any, error) {
	req, err := bind.ParseJSON[domain.TriggerRequest](r, bind.JSONOptions{
		MaxBytes:        1 << 20,
		DisallowUnknown: true,
		AllowEmptyBody:  true,
	})
	if err != nil {
		return nil, err
	}

	// scheduler parity: the same knobs are accepted as query parameters so a
	// bare cron POST needs no body. Query values win over body values
	if err := applyQuery(r, &req); err != nil {
		return nil, err
	}

	return h.deps.Trigger.Trigger(r.Context(), req)
}

func (h *handlers) summary(r *http.Request) (any, error) {
	return h.deps.Stasher.Summary(r.Context())
}

func (h *handlers) runs(r *http.Request) (any, error) {
	cps, err := h.deps.Stasher.ListCheckpoints(r.Context())
	if err != nil {
		return nil, err
	}
	return httpkit.List(cps, len(cps), 1, len(cps), ""), nil
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

func applyQuery(r *http.Request, req *domain.TriggerRequest) error {
	q := r.URL.Query()

	if v := q.Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perr.Newf(perr.ErrorCodeValidation, "hours must be an integer")
		}
		req.Hours = n
	}
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perr.Newf(perr.ErrorCodeValidation, "days must be an integer")
		}
		req.Days = n
	}
	if v := q.Get("repos"); v != "" {
		var repos []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				repos = append(repos, p)
			}
		}
		req.Repos = repos
	}
	if v := q.Get("resume"); v != "" {
		req.Resume = v
	}

	return nil
}
