package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName            = "bool"
	toggleFlagTrueLiteral         = "true"
	toggleFlagAcceptedLiterals    = "true, false, yes, no, on, off, 1, 0"
	errorInvalidToggleValueFormat = "invalid boolean value %q for --%s; accepted values: %s"
)

var toggleFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// toggleFlagValue is a boolean flag that also accepts yes/no and on/off literals.
type toggleFlagValue struct {
	target   *bool
	flagName string
}

func (value *toggleFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleFlagTrueLiteral
	}
	parsed, known := toggleFlagLiterals[normalized]
	if !known {
		return fmt.Errorf(errorInvalidToggleValueFormat, input, value.flagName, toggleFlagAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

// registerToggleFlag adds a boolean flag that can be given bare, with "=value", or followed by a literal.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&toggleFlagValue{target: target, flagName: name}, name, usage)
	if registeredFlag := flagSet.Lookup(name); registeredFlag != nil {
		registeredFlag.DefValue = strconv.FormatBool(false)
		registeredFlag.NoOptDefVal = toggleFlagTrueLiteral
	}
}

// normalizeToggleArguments rewrites "--flag literal" into "--flag=literal" for toggle
// flags, so the literal is not taken as the repository path.
func normalizeToggleArguments(flagSet *pflag.FlagSet, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	flagSet.VisitAll(func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleFlagValue); isToggle {
			toggleNames[flag.Name] = struct{}{}
		}
	})
	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		currentArgument := arguments[argumentIndex]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[argumentIndex:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, "--")
		if _, isToggle := toggleNames[flagName]; isLongFlag && isToggle && argumentIndex+1 < len(arguments) {
			literal := strings.ToLower(strings.TrimSpace(arguments[argumentIndex+1]))
			if _, known := toggleFlagLiterals[literal]; known {
				normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, arguments[argumentIndex+1]))
				argumentIndex++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}
