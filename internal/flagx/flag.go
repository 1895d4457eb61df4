// Package flagx pre-scans command-line arguments so several flag sets can
// share one argv without tripping over each other's flags.
package flagx

import "strings"

// Set describes the flags a consumer owns. The value reports whether the
// flag takes an argument; boolean flags map to false.
type Set map[string]bool

// Pick returns the arguments in args that belong to set, in order. Both
// "-name" and "--name" spellings are recognised, as are "-name=value"
// forms. A value flag also keeps the argument that follows it unless that
// argument is itself a flag. Everything else, positionals included, is
// dropped.
func Pick(args []string, set Set) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		name, inline, ok := split(args[i])
		if !ok {
			continue
		}
		takesValue, known := set[name]
		if !known {
			continue
		}

		out = append(out, args[i])
		if inline || !takesValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// Lookup returns the value of the last occurrence of any of names, or ""
// when none is present.
func Lookup(args []string, names ...string) string {
	set := make(Set, len(names))
	for _, n := range names {
		set[n] = true
	}

	var value string
	picked := Pick(args, set)
	for i := 0; i < len(picked); i++ {
		if _, v, found := strings.Cut(picked[i], "="); found {
			value = v
			continue
		}
		if i+1 < len(picked) && !strings.HasPrefix(picked[i+1], "-") {
			value = picked[i+1]
			i++
		}
	}

	return value
}

// split turns "--name=value" into ("name", true, true). Arguments that are
// not flags, or are the "-" / "--" markers, report ok=false.
func split(arg string) (name string, inline bool, ok bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false, false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, _, inline = strings.Cut(name, "=")
	return name, inline, name != ""
}
