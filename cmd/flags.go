package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// validateFormatFlag checks a command's --format flag against the formats it
// can render, so bad values fail before any scanning work happens.
func validateFormatFlag(flags *pflag.FlagSet, allowed ...string) error {
	format, err := flags.GetString("format")
	if err != nil {
		// Command has no format flag
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(allowed, ", "))
}
