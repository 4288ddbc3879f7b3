// Package workload turns the workload options into processes and assigns the
// processes to the execution contexts of the processors.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/joho/godotenv"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
)

// FirstPID is the pid tag of the first process. Later processes count up.
const FirstPID = 100

// ErrNoWorkload is returned when neither a command nor a benchmark list is
// given.
var ErrNoWorkload = errors.New("no workload specified")

// Host carries the properties of the host process that simulated processes
// inherit.
type Host struct {
	Cwd string
	GID int
}

// CurrentHost returns the working directory and group of this process.
func CurrentHost() (Host, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Host{}, err
	}

	return Host{Cwd: cwd, GID: os.Getgid()}, nil
}

// Resolve produces the processes the options ask for. A benchmark list takes
// precedence over a command.
func Resolve(
	w options.Workload,
	isa string,
	numCPUs int,
	host Host,
	reg *Registry,
) ([]*hw.Process, error) {
	switch {
	case w.Bench != "":
		return reg.Resolve(w, isa, numCPUs)
	case w.Cmd != "":
		return Parse(w, host)
	default:
		return nil, ErrNoWorkload
	}
}

// Parse splits the command, options, and redirections on ';' into one
// process per command. Missing trailing entries are left empty.
func Parse(w options.Workload, host Host) ([]*hw.Process, error) {
	var env []string

	if w.Env != "" {
		var err error

		env, err = ReadEnvFile(w.Env)
		if err != nil {
			return nil, err
		}
	}

	cmds := strings.Split(w.Cmd, ";")
	args := splitOrEmpty(w.Options)
	inputs := splitOrEmpty(w.Input)
	outputs := splitOrEmpty(w.Output)
	errouts := splitOrEmpty(w.Errout)

	procs := make([]*hw.Process, 0, len(cmds))

	for i, exe := range cmds {
		argv := []string{exe}
		if i < len(args) {
			argv = append(argv, strings.Fields(args[i])...)
		}

		procs = append(procs, hw.NewProcess(hw.ProcessSpec{
			PID:        FirstPID + i,
			Executable: exe,
			Cwd:        host.Cwd,
			GID:        host.GID,
			Args:       argv,
			Env:        env,
			Input:      at(inputs, i),
			Output:     at(outputs, i),
			Errout:     at(errouts, i),
		}))
	}

	return procs, nil
}

// ReadEnvFile returns the lines of an env file in file order with trailing
// whitespace removed. Lines are passed through unchanged; assignments are
// only checked for being well formed.
func ReadEnvFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open env file: %w", err)
	}
	defer f.Close()

	var lines []string

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)

		if strings.Contains(line, "=") {
			if _, err := godotenv.Unmarshal(line); err != nil {
				return nil, fmt.Errorf("failed to parse env file %s:%d: %w", path, n, err)
			}
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return lines, nil
}

func splitOrEmpty(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ";")
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}

	return ""
}
