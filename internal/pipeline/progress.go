package pipeline

import "sync"

// Stage names the phases a job moves through, in order.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageChunking     Stage = "chunking"
	StageProcessing   Stage = "processing"
	StageCombining    Stage = "combining"
	StageFinalizing   Stage = "finalizing"
	StageCompleted    Stage = "completed"
)

// Progress fraction bands per stage. Processing distributes its band evenly
// across chunks.
const (
	fracInitializing = 0.0
	fracChunking     = 0.1
	fracProcessing   = 0.2
	fracCombining    = 0.9
	fracFinalizing   = 0.95
	fracCompleted    = 1.0
)

// ProgressEvent is emitted on every stage transition. Events are
// side-effect-only; the pipeline's control flow never depends on whether
// anyone listens.
type ProgressEvent struct {
	Stage    Stage
	Message  string
	Fraction float64
}

// ProgressFunc receives progress events. May be nil.
type ProgressFunc func(ProgressEvent)

// progressEmitter enforces the monotonicity contract: the reported fraction
// never decreases, even if stages complete out of order.
type progressEmitter struct {
	mu  sync.Mutex
	fn  ProgressFunc
	max float64
}

func newProgressEmitter(fn ProgressFunc) *progressEmitter {
	return &progressEmitter{fn: fn}
}

// emit clamps the fraction to [0,1], holds it at the maximum observed so far,
// and forwards the event. Returns the event as reported.
func (e *progressEmitter) emit(stage Stage, message string, fraction float64) ProgressEvent {
	e.mu.Lock()
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	if fraction < e.max {
		fraction = e.max
	}
	e.max = fraction
	fn := e.fn
	e.mu.Unlock()

	event := ProgressEvent{Stage: stage, Message: message, Fraction: fraction}
	if fn != nil {
		fn(event)
	}
	return event
}

// processingFraction maps completed-chunk counts into the processing band.
func processingFraction(completed, total int) float64 {
	if total <= 0 {
		return fracProcessing
	}
	span := fracCombining - fracProcessing
	return fracProcessing + span*float64(completed)/float64(total)
}
