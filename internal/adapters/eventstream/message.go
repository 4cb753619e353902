package eventstream

import (
	"time"

	"github.com/andrescamacho/hauler-go/internal/domain/task"
)

// SignalMessage is the JSON frame sent for each task signal
type SignalMessage struct {
	Type       string    `json:"type"`
	Worker     uint64    `json:"worker"`
	Supervisor uint64    `json:"supervisor,omitempty"`
	WorkItem   uint64    `json:"work_item,omitempty"`
	Kind       string    `json:"kind"`
	Target     uint64    `json:"target,omitempty"`
	Phase      string    `json:"phase,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Tick       uint64    `json:"tick"`
	At         time.Time `json:"at"`
}

func newSignalMessage(s task.Signal) SignalMessage {
	return SignalMessage{
		Type:       string(s.Type),
		Worker:     uint64(s.Worker),
		Supervisor: uint64(s.Supervisor),
		WorkItem:   uint64(s.WorkItem),
		Kind:       string(s.Kind),
		Target:     uint64(s.Target),
		Phase:      string(s.Phase),
		Reason:     string(s.Reason),
		Tick:       s.Tick,
		At:         s.At,
	}
}
