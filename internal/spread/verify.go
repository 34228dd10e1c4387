package spread

import (
	"errors"
	"fmt"
)

// CheckLinks verifies that every artifact input is produced by an earlier
// command and that each command declares an output.
func CheckLinks(commands []Command) error {
	produced := make(map[string]int, len(commands))
	var errs []error
	for i, cmd := range commands {
		for _, in := range cmd.Inputs {
			if !in.IsArtifact() {
				continue
			}
			if _, ok := produced[in.Name]; !ok {
				errs = append(errs, fmt.Errorf("command %d (%s): input %q has no earlier producer", i, cmd.Title, in.Name))
			}
		}
		out := cmd.Output()
		if out == "" {
			errs = append(errs, fmt.Errorf("command %d (%s): no output", i, cmd.Title))
			continue
		}
		produced[out] = i
	}
	return errors.Join(errs...)
}
