// internal/syscmd/syscmd.go
package syscmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Command is a configured command line, split with shell quoting rules
// but never run through a shell.
type Command struct {
	argv []string
}

// Parse splits a command line such as `sudo shutdown -h now`.
func Parse(line string) (Command, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("syscmd: parse %q: %w", line, err)
	}
	if len(argv) == 0 {
		return Command{}, errors.New("syscmd: empty command")
	}
	return Command{argv: argv}, nil
}

// String returns the argv joined by spaces.
func (c Command) String() string {
	return strings.Join(c.argv, " ")
}

// Run executes the command with extra environment entries ("K=V").
// Output is returned so callers can log it; a non-zero exit is an error
// carrying the trimmed output.
func (c Command) Run(ctx context.Context, env ...string) ([]byte, error) {
	if len(c.argv) == 0 {
		return nil, errors.New("syscmd: empty command")
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Env = append(os.Environ(), env...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("syscmd: %s: %w (%s)", c.argv[0], err, strings.TrimSpace(out.String()))
	}
	return out.Bytes(), nil
}
