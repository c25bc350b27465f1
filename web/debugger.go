package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avaldes/ocho"
)

// Snapshot is the machine state after one cycle, as sent on the /events
// channel.
type Snapshot struct {
	OpCode uint16                  `json:"opcode"`
	Pc     uint16                  `json:"pc"`
	I      uint16                  `json:"i"`
	Sp     byte                    `json:"sp"`
	V      [16]byte                `json:"v"`
	Stack  [ocho.StackDepth]uint16 `json:"stack"`
	Dt     byte                    `json:"dt"`
	St     byte                    `json:"st"`
	Cycles uint                    `json:"cycles"`
}

// Debugger observes a console through its cycle hooks and streams one
// snapshot per executed cycle to an SSE client.
//
// Attaching it stops the console and sets it to one cycle per frame so every
// instruction is observable; the client decides when to start.
type Debugger struct {
	// SendEvery throttles the stream to every n-th cycle
	SendEvery uint

	console       *ocho.Console
	currentOpCode uint16

	send chan Snapshot
}

func NewDebugger(console *ocho.Console) *Debugger {
	deb := &Debugger{
		SendEvery: 1,

		console: console,
		send:    make(chan Snapshot, 1),
	}

	console.AddBeforeCycleHook(deb.beforeCycle)
	console.AddAfterCycleHook(deb.afterCycle)
	console.CyclesPerFrame = 1

	console.Stop()

	return deb
}

func (d *Debugger) beforeCycle(c *ocho.Console) {
	m := c.Machine
	if int(m.Pc)+1 >= ocho.MemorySize {
		return
	}

	d.currentOpCode = uint16(m.Memory[m.Pc+0]) << 8
	d.currentOpCode |= uint16(m.Memory[m.Pc+1]) << 0
}

func (d *Debugger) afterCycle(c *ocho.Console) {
	if c.Cycles()%d.SendEvery != 0 {
		return
	}

	m := c.Machine
	snap := Snapshot{
		OpCode: d.currentOpCode,
		Pc:     m.Pc,
		I:      m.I,
		Sp:     m.Sp,
		V:      m.V,
		Stack:  m.Stack,
		Dt:     m.Dt,
		St:     m.St,
		Cycles: c.Cycles(),
	}

	// Drop the snapshot when no client is draining the channel; the
	// console loop must never stall on the debugger.
	select {
	case d.send <- snap:
	default:
	}
}

// ServeEvents streams snapshots as server-sent events until the client goes
// away.
func (d *Debugger) ServeEvents(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case snap := <-d.send:
			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}

			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
