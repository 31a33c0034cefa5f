// Package flagx lets several components parse their own subset of the
// command line without tripping over each other's flags.
package flagx

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Both "-f value" and "--flag=value" forms are recognised; a token
// starting with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the value of -c/--config from args, or "" when the
// flag is absent. Other flags are ignored.
func ConfigFileFlag(args []string) string {
	var path string

	fs := pflag.NewFlagSet("config-file", pflag.ContinueOnError)
	fs.StringVarP(&path, "config", "c", "", "path to a JSON or YAML config file")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "--config"}))

	return path
}

// ConfigFile is ConfigFileFlag applied to os.Args.
func ConfigFile() string {
	return ConfigFileFlag(os.Args[1:])
}
