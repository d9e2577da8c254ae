// Package kernel is a stub for a Jupyter-style notebook kernel
// integration, named in spec.md §1 as out of core scope. It keeps only
// the wire message shapes a real implementation would need and a
// single entry point wired straight through to transport.Exec, so the
// boundary is documented without pulling in a ZeroMQ dependency no
// other part of this spec would ever exercise.
package kernel

// ExecuteRequest is the subset of a Jupyter "execute_request" message
// this stub understands: the code to run.
type ExecuteRequest struct {
	Code string `json:"code"`
}

// ExecuteReply is the subset of a Jupyter "execute_reply" message this
// stub produces: stdout, stderr, and whether execution succeeded.
type ExecuteReply struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	OK     bool   `json:"ok"`
}

// Kernel adapts a single-statement execute_request/execute_reply cycle
// onto a board transport. It does not implement the ZeroMQ shell/iopub
// sockets a real Jupyter kernel needs; a caller wanting that would
// drive this type from its own message loop.
type Kernel struct {
	Exec func(code string) (stdout, stderr string, err error)
}

// New builds a Kernel that runs code through exec, typically
// (*transport.Transport).Exec wrapped to also return stderr.
func New(exec func(code string) (stdout, stderr string, err error)) *Kernel {
	return &Kernel{Exec: exec}
}

// Execute runs code through k.Exec and returns its stdout, stderr and
// error unchanged; it does not build an ExecuteReply.
func (k *Kernel) Execute(code string) (stdout, stderr string, err error) {
	return k.Exec(code)
}
