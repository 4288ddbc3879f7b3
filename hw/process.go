package hw

// ProcessSpec lists the attributes of a process.
type ProcessSpec struct {
	PID        int
	Executable string
	Cwd        string
	GID        int
	Args       []string
	Env        []string
	Input      string
	Output     string
	Errout     string
	UseArchPT  bool
	KvmInSE    bool
}

// A Process is a resolved workload. It does not change after it is created;
// functions that need a variant return a new Process.
type Process struct {
	spec ProcessSpec
}

// NewProcess creates a process from a spec.
func NewProcess(spec ProcessSpec) *Process {
	spec.Args = append([]string(nil), spec.Args...)
	spec.Env = append([]string(nil), spec.Env...)

	return &Process{spec: spec}
}

// Spec returns a copy of the attributes of the process.
func (p *Process) Spec() ProcessSpec {
	s := p.spec
	s.Args = append([]string(nil), s.Args...)
	s.Env = append([]string(nil), s.Env...)

	return s
}

// PID returns the process-id tag.
func (p *Process) PID() int { return p.spec.PID }

// Executable returns the program path.
func (p *Process) Executable() string { return p.spec.Executable }

// Cwd returns the working directory.
func (p *Process) Cwd() string { return p.spec.Cwd }

// Args returns the command line, starting with the executable.
func (p *Process) Args() []string { return append([]string(nil), p.spec.Args...) }

// Env returns the environment lines.
func (p *Process) Env() []string { return append([]string(nil), p.spec.Env...) }

// Input returns the path that stdin is redirected from, "" for none.
func (p *Process) Input() string { return p.spec.Input }

// Output returns the path that stdout is redirected to, "" for none.
func (p *Process) Output() string { return p.spec.Output }

// Errout returns the path that stderr is redirected to, "" for none.
func (p *Process) Errout() string { return p.spec.Errout }

// UseArchPT tells whether the process uses architectural page tables.
func (p *Process) UseArchPT() bool { return p.spec.UseArchPT }

// KvmInSE tells whether the process is set up for host execution.
func (p *Process) KvmInSE() bool { return p.spec.KvmInSE }

// An ExecutionContext is one hardware thread context of a processor.
type ExecutionContext struct {
	index     int
	cpu       *Component
	workloads []*Process
}

// Index returns the ordinal of the context in the system.
func (c *ExecutionContext) Index() int {
	return c.index
}

// CPU returns the processor that owns the context.
func (c *ExecutionContext) CPU() *Component {
	return c.cpu
}

// Workloads returns the processes assigned to the context.
func (c *ExecutionContext) Workloads() []*Process {
	return append([]*Process(nil), c.workloads...)
}
