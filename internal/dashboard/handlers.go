package dashboard

import (
	"encoding/json"
	"net/http"
)

type Handlers struct {
	cache Cache
}

func NewHandlers(cache Cache) *Handlers {
	return &Handlers{cache: cache}
}

// snapshot loads the latest cached refresh. A miss (reader not started yet,
// or cache expired) is reported as 503 so pollers back off and retry.
func (h *Handlers) snapshot(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	snap, err := h.cache.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if snap == nil {
		http.Error(w, "no data", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap)
}

func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Summary)
}

func (h *Handlers) Channels(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Channels)
}

func (h *Handlers) TopStores(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.TopStores)
}

func (h *Handlers) Trend(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Trend)
}

func (h *Handlers) Recent(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Recent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	json.NewEncoder(w).Encode(v)
}
