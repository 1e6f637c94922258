// Package flagx pulls individual flags out of os.Args so the env, JSON and
// flag config layers can each parse their own subset of the command line.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, together with their
// values. "-f value" and "-f=value" are both understood; a value must not
// start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				out = append(out, arg)
			}
			continue
		}
		if !allowed[arg] {
			continue
		}

		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// JsonConfigFlags returns the config file path given via -c or -config,
// or an empty string when neither flag is present.
func JsonConfigFlags() string {
	return lookupString(os.Args[1:], "config", "c")
}

// EnvFileFlags returns the dotenv file path given via -e or -env,
// or an empty string when neither flag is present.
func EnvFileFlags() string {
	return lookupString(os.Args[1:], "env", "e")
}

// lookupString parses only the named string flags out of args. The last
// occurrence wins.
func lookupString(args []string, long, short string) string {
	var value string

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&value, long, "", "")
	fs.StringVar(&value, short, "", "")
	_ = fs.Parse(FilterArgs(args, []string{"-" + short, "-" + long, "--" + short, "--" + long}))

	return value
}
