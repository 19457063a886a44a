package refinement

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with the Phase constants in state.go.
const (
	StateRunning   = "running"
	StateConverged = "converged"
	StateRegressed = "regressed_rolled_back"
	StateExhausted = "exhausted"
)

// Events accepted by the phase machine.
const (
	EventConverge = "converge"
	EventRegress  = "regress"
	EventExhaust  = "exhaust"
)

func init() {
	stateMap := map[string]Phase{
		StateRunning:   PhaseRunning,
		StateConverged: PhaseConverged,
		StateRegressed: PhaseRegressed,
		StateExhausted: PhaseExhausted,
	}

	for fsmState, phase := range stateMap {
		if fsmState != string(phase) {
			panic(fmt.Sprintf("FSM state %q does not match Phase %q - constants are out of sync", fsmState, phase))
		}
	}
}

// RunContext carries the run identity through the machine.
type RunContext struct {
	RunID string
}

// PhaseMachine drives a refinement run from running to exactly one terminal phase.
type PhaseMachine struct {
	interpreter *statekit.Interpreter[RunContext]
}

// NewPhaseMachine builds a machine in the running phase.
func NewPhaseMachine(runID string) (*PhaseMachine, error) {
	builder := statekit.NewMachine[RunContext]("refinement-run").
		WithInitial(statekit.StateID(StateRunning)).
		WithContext(RunContext{RunID: runID})

	builder.State(StateRunning).
		On(EventConverge).Target(StateConverged).
		On(EventRegress).Target(StateRegressed).
		On(EventExhaust).Target(StateExhausted).
		Done()

	// Terminal phases accept no events.
	builder.State(StateConverged).Done()
	builder.State(StateRegressed).Done()
	builder.State(StateExhausted).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build refinement state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &PhaseMachine{interpreter: interpreter}, nil
}

// Transition sends event and fails if the phase did not change.
func (m *PhaseMachine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() != before {
		return nil
	}
	return fmt.Errorf("event '%s' is not allowed while the run is '%s'", event, before)
}

// Current returns the current phase.
func (m *PhaseMachine) Current() Phase {
	return Phase(m.interpreter.State().Value)
}

// IsTerminal reports whether the run has stopped.
func (m *PhaseMachine) IsTerminal() bool {
	return m.Current().IsTerminal()
}
