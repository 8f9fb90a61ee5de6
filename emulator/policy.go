package emulator

import (
	"strings"
)

// Policy selects how the emulator handles an unsupported operation,
// such as RTI or a TRAP to a vector with no service routine.
type Policy string

const (
	POLICY_FATAL = Policy("fatal") // Stop the run with the error.
	POLICY_SKIP  = Policy("skip")  // Log the error, and continue.
)

// UnmarshalText parses a policy name, ignoring case.
func (policy *Policy) UnmarshalText(text []byte) (err error) {
	switch value := Policy(strings.ToLower(string(text))); value {
	case POLICY_FATAL, POLICY_SKIP:
		*policy = value
	default:
		err = ErrPolicy(text)
	}

	return
}

func (policy Policy) String() string {
	return string(policy)
}

// Set parses a policy from a command line flag.
func (policy *Policy) Set(text string) error {
	return policy.UnmarshalText([]byte(text))
}
