package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Options a caller may not smuggle in through extra arguments: they would add
// inputs or redirect where ffmpeg writes.
var forbiddenArgs = map[string]bool{
	"-i":               true,
	"-f":               true,
	"-y":               true,
	"-filter_complex":  true,
	"-map":             true,
	"-progress":        true,
	"-report":          true,
	"-dump_attachment": true,
}

// SplitCommand securely splits a command string into a slice of arguments.
// It prevents shell injection by not using a shell.
func SplitCommand(command string) ([]string, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid command syntax: %w", err)
	}
	return args, nil
}

// SanitizeAndValidateArgs checks caller supplied encoder arguments for
// potential security risks.
func SanitizeAndValidateArgs(args []string) error {
	for _, arg := range args {
		if forbiddenArgs[arg] {
			return fmt.Errorf("argument not allowed: %s", arg)
		}
		// exec.Command never runs a shell, but these have no business in encoder options.
		if strings.ContainsAny(arg, "|&;`$()<>") {
			return fmt.Errorf("disallowed character found in argument: %s", arg)
		}
	}
	return nil
}
