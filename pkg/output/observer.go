package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// Phase identifies the part of a run a progress tick belongs to
type Phase string

const (
	PhaseFingerprint Phase = "fingerprint"
	PhaseExecute     Phase = "execute"
)

// Observer receives purely informational progress notifications.
// Implementations must be safe for concurrent use.
type Observer interface {
	// Start announces a phase and the number of ticks to expect
	Start(phase Phase, total int)
	// Tick reports one processed file
	Tick(phase Phase, path string)
	// Finish closes a phase
	Finish(phase Phase)
}

// NullObserver discards all progress
type NullObserver struct{}

// NewNullObserver creates an observer that does nothing
func NewNullObserver() *NullObserver {
	return &NullObserver{}
}

func (NullObserver) Start(Phase, int)   {}
func (NullObserver) Tick(Phase, string) {}
func (NullObserver) Finish(Phase)       {}

// OrNull returns o, or a NullObserver when o is nil
func OrNull(o Observer) Observer {
	if o == nil {
		return NewNullObserver()
	}
	return o
}

const barTemplate = `{{string . "phase"}} {{bar . "[" "=" ">" " " "]"}} {{counters . }} {{string . "path"}}`

// BarObserver renders one progress bar per phase
type BarObserver struct {
	writer io.Writer
	mu     sync.Mutex
	bars   map[Phase]*pb.ProgressBar
}

// NewBarObserver creates a progress bar observer writing to w (stderr when nil)
func NewBarObserver(w io.Writer) *BarObserver {
	if w == nil {
		w = os.Stderr
	}
	return &BarObserver{
		writer: w,
		bars:   make(map[Phase]*pb.ProgressBar),
	}
}

// Start creates and starts the bar for phase
func (o *BarObserver) Start(phase Phase, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if old, ok := o.bars[phase]; ok {
		old.Finish()
	}

	bar := pb.ProgressBarTemplate(barTemplate).New(total)
	bar.SetWriter(o.writer)
	bar.SetWidth(100)
	bar.Set("phase", labelFor(phase))
	bar.Start()
	o.bars[phase] = bar
}

// Tick advances the phase's bar and shows the file being processed
func (o *BarObserver) Tick(phase Phase, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	bar, ok := o.bars[phase]
	if !ok {
		return
	}
	bar.Set("path", path)
	bar.Increment()
}

// Finish completes the phase's bar
func (o *BarObserver) Finish(phase Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if bar, ok := o.bars[phase]; ok {
		bar.Set("path", "")
		bar.Finish()
		delete(o.bars, phase)
	}
}

// Current returns the bar's count for phase, or -1 when the phase is not running
func (o *BarObserver) Current(phase Phase) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if bar, ok := o.bars[phase]; ok {
		return bar.Current()
	}
	return -1
}

func labelFor(phase Phase) string {
	switch phase {
	case PhaseFingerprint:
		return "Hashing "
	case PhaseExecute:
		return "Applying"
	default:
		return string(phase)
	}
}
