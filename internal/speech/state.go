package speech

import "sync"

// State is the listening gate state.
type State int

const (
	// Idle: not listening, not speaking.
	Idle State = iota
	// Listening: the recognizer is live and transcripts are accepted.
	Listening
	// Speaking: an announcement is playing; recognition is off.
	Speaking
	// Processing: a transcript is being handled; further input is dropped.
	Processing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	case Speaking:
		return "speaking"
	case Processing:
		return "processing"
	}
	return "idle"
}

// Gate serializes the voice pipeline. Listening, Speaking, and
// Processing are mutually exclusive; a transcript that arrives outside
// Listening is dropped, never buffered, which removes the class of bugs
// where a stale utterance fires after an announcement finishes.
//
// Transition table (all other transitions are rejected):
//
//	Idle       -> Listening   StartListening
//	Listening  -> Processing  Accept
//	Listening  -> Idle        StopListening
//	Processing -> Idle        FinishProcessing
//	Idle|Listening|Processing -> Speaking  BeginSpeaking
//	Speaking   -> Idle        FinishSpeaking
type Gate struct {
	mu    sync.Mutex
	state State
}

// NewGate returns a gate in the Idle state.
func NewGate() *Gate {
	return &Gate{}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// StartListening arms the recognizer. Allowed only from Idle.
func (g *Gate) StartListening() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Idle {
		return false
	}
	g.state = Listening
	return true
}

// StopListening disarms the recognizer without consuming a transcript.
func (g *Gate) StopListening() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Listening {
		return false
	}
	g.state = Idle
	return true
}

// Accept claims an incoming transcript. It returns true and moves to
// Processing only when the gate is Listening; in every other state the
// transcript must be discarded by the caller.
func (g *Gate) Accept() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Listening {
		return false
	}
	g.state = Processing
	return true
}

// FinishProcessing releases the gate after a transcript was handled.
func (g *Gate) FinishProcessing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Processing {
		return false
	}
	g.state = Idle
	return true
}

// BeginSpeaking claims the voice output channel. It preempts Listening
// (the recognizer must stop before audio plays, or it hears itself) and
// follows Processing directly so results can be announced. Rejected only
// while another announcement is active.
func (g *Gate) BeginSpeaking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Speaking {
		return false
	}
	g.state = Speaking
	return true
}

// FinishSpeaking releases the output channel.
func (g *Gate) FinishSpeaking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Speaking {
		return false
	}
	g.state = Idle
	return true
}
