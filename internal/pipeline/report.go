package pipeline

import (
	"sort"
	"sync"
	"time"
)

// Stage names the step that produced a report item.
type Stage string

const (
	StageExtract Stage = "extract"
	StageTerms   Stage = "terms"
	StageRepair  Stage = "repair"
)

// Item is the outcome of one file in one stage.
type Item struct {
	Stage  Stage  `json:"stage"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report collects per-file outcomes of a run.
type Report struct {
	mu sync.Mutex

	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	items []Item
}

func NewReport() *Report {
	return &Report{RunID: NewRunID(), StartedAt: time.Now()}
}

// Add records an item.
func (r *Report) Add(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Items returns a copy of the recorded items in order.
func (r *Report) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Item(nil), r.items...)
}

// StageCount is the number of items with one status in one stage.
type StageCount struct {
	Stage  Stage
	Status string
	Count  int
}

// Counts tallies items by stage and status, ordered by stage then status.
func (r *Report) Counts() []StageCount {
	r.mu.Lock()
	defer r.mu.Unlock()

	type key struct {
		stage  Stage
		status string
	}
	tally := make(map[key]int)
	for _, it := range r.items {
		tally[key{it.Stage, it.Status}]++
	}
	out := make([]StageCount, 0, len(tally))
	for k, n := range tally {
		out = append(out, StageCount{Stage: k.stage, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// Failed reports whether any item failed.
func (r *Report) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.Status == "failed" {
			return true
		}
	}
	return false
}

// Elapsed is the run's duration, or the time so far if unfinished.
func (r *Report) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
