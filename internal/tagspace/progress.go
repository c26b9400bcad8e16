package tagspace

// Progress receives pipeline progress. Stage announces a new stage with its
// total units (entries, or bytes for hashing); Add reports completed units.
// Add may be called from several goroutines.
type Progress interface {
	Stage(name string, total int64)
	Add(n int64)
	Done()
}

type nopProgress struct{}

func (nopProgress) Stage(string, int64) {}
func (nopProgress) Add(int64)           {}
func (nopProgress) Done()               {}
