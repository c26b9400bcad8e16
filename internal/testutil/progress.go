package testutil

import "sync"

// RecordingProgress remembers the stages announced and the units added.
type RecordingProgress struct {
	mu     sync.Mutex
	Stages []string
	Totals map[string]int64
	Added  map[string]int64
	Dones  int

	current string
}

func NewRecordingProgress() *RecordingProgress {
	return &RecordingProgress{Totals: make(map[string]int64), Added: make(map[string]int64)}
}

func (p *RecordingProgress) Stage(name string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = name
	p.Stages = append(p.Stages, name)
	p.Totals[name] = total
}

func (p *RecordingProgress) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Added[p.current] += n
}

func (p *RecordingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Dones++
}
