// Package det records the last diagnostic reported by a CAN driver instance.
//
// A Reporter holds one {module, api, error} record that is overwritten by
// every Report and zeroed by Clear. Each driver owns its own Reporter; the
// queue packages never report on their own, callers decide which Full or
// Empty outcomes are worth recording.
package det

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/randomizedcoder/can-msgqueue/internal/canq"
)

// Module identifiers.
const (
	ModuleCanQ      uint8 = 0x50
	ModuleIngress   uint8 = 0x51
	ModuleScheduler uint8 = 0x52
)

// API identifiers.
const (
	APICreate uint8 = iota + 1
	APIReset
	APIAdd
	APIRead
	APIStatus
	APITransmit
)

// Error codes.
const (
	ErrCodeFull uint8 = iota + 1
	ErrCodeEmpty
	ErrCodeCapacity
	ErrCodeResolver
	ErrCodeTransmit
)

// Record is one reported diagnostic.
type Record struct {
	Module uint8
	API    uint8
	Error  uint8
	At     time.Time
}

// Reporter keeps the most recent Record. It is safe for concurrent use.
type Reporter struct {
	mu    sync.Mutex
	last  Record
	set   bool
	count uint64
	log   *zap.Logger
	now   func() time.Time
}

// NewReporter returns an empty Reporter. A nil logger disables logging.
func NewReporter(log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		log: log.Named("det"),
		now: time.Now,
	}
}

// Report overwrites the current record.
func (r *Reporter) Report(module, api, code uint8) {
	r.mu.Lock()
	r.last = Record{Module: module, API: api, Error: code, At: r.now()}
	r.set = true
	r.count++
	r.mu.Unlock()

	r.log.Warn("diagnostic reported",
		zap.Uint8("module", module),
		zap.Uint8("api", api),
		zap.Uint8("error", code))
}

// ReportErr maps err with CodeOf and reports it. It returns false, reporting
// nothing, when err has no code.
func (r *Reporter) ReportErr(module, api uint8, err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	r.Report(module, api, code)
	return true
}

// Clear zeroes the current record. The report count is kept.
func (r *Reporter) Clear() {
	r.mu.Lock()
	r.last = Record{}
	r.set = false
	r.mu.Unlock()
}

// Last returns the current record and whether one is set.
func (r *Reporter) Last() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.set
}

// Count returns the number of Report calls since creation.
func (r *Reporter) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// CodeOf maps queue errors to diagnostic codes.
func CodeOf(err error) (uint8, bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, canq.ErrFull):
		return ErrCodeFull, true
	case errors.Is(err, canq.ErrEmpty):
		return ErrCodeEmpty, true
	case errors.Is(err, canq.ErrCapacity):
		return ErrCodeCapacity, true
	case errors.Is(err, canq.ErrNilResolver):
		return ErrCodeResolver, true
	default:
		return 0, false
	}
}
