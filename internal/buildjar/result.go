package buildjar

// Result of one invocation.
type Result struct {
	// OK reports compilation success. An invocation with no sources is
	// trivially successful.
	OK bool

	// Output is the accumulated compiler banner text followed by the
	// rendered diagnostics.
	Output string
}

// ExitCode maps the result to a process or worker exit code.
func (r *Result) ExitCode() int {
	if r.OK {
		return 0
	}

	return 1
}
