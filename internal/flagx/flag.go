// Package flagx helps several independent flag sets share one command line.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the given flags, so a
// component can parse its own flags without failing on everyone else's.
//
// valueFlags take a value, either as the next argument ("-d dsn") or inline
// ("-d=dsn"). boolFlags never consume the next argument; they are kept as
// "-flag" or "-flag=value".
func FilterArgs(args []string, valueFlags []string, boolFlags ...string) []string {
	withValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		withValue[f] = struct{}{}
	}
	bare := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		bare[f] = struct{}{}
	}

	known := func(name string) bool {
		_, v := withValue[name]
		_, b := bare[name]
		return v || b
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if known(name) {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := bare[arg]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := withValue[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFile extracts the JSON config path given with -c or -config.
// It returns "" when neither is present; the last occurrence wins.
func ConfigFile(args []string) string {
	var config string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
