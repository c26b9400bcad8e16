package app

// Operation statuses.
const (
	OpRunning = "running"
	OpSuccess = "success"
	OpError   = "error"
)

// Operation tracks the CLI command being run. It starts in memory with
// ID 0; commands that change the index persist it, which gives it an id
// from the operation table. That id is the version of any snapshot taken
// afterwards.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     OpSuccess,
	}
}

// Persisted reports whether the operation has been saved to the index.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed when err is non-nil.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = OpError
	}
}
