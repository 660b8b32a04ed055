package grc

import "fmt"

type Flag byte

const FlagPrefix = '-'

const (
	FlagOptimization Flag = 'O'
	FlagInteractive  Flag = 'i'
	FlagAssembly     Flag = 'f'
)

var flagTable = map[byte]Flag{
	'O': FlagOptimization,
	'i': FlagInteractive,
	'f': FlagAssembly,
}

func (f Flag) String() string {
	return string([]byte{FlagPrefix, byte(f)})
}

// FlagSet holds the token each recognized flag was last given with. The zero
// value is an empty set and is safe to use.
type FlagSet struct {
	values map[Flag]string
}

func (s FlagSet) Get(f Flag) string {
	return s.values[f]
}

func (s FlagSet) Has(f Flag) bool {
	return s.values[f] != ""
}

func (s FlagSet) with(f Flag, token string) FlagSet {
	values := make(map[Flag]string, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}

	values[f] = token
	return FlagSet{values: values}
}

type Request struct {
	Flags FlagSet
	Input string
}

func (r *Request) HasInput() bool {
	return r.Input != ""
}

func ParseArgs(args []string) (*Request, error) {
	req := &Request{}

	for _, arg := range args {
		switch {
		case arg == "":
			continue
		case arg[0] != FlagPrefix:
			req.Input = arg // Last positional wins
		case len(arg) == 1:
			return nil, &MalformedFlagError{Token: arg}
		default:
			f, ok := flagTable[arg[1]]
			if !ok {
				return nil, &UnknownFlagError{Token: arg}
			}

			req.Flags = req.Flags.with(f, arg)
		}
	}

	return req, nil
}

type MalformedFlagError struct {
	Token string
}

func (e MalformedFlagError) String() string {
	return fmt.Sprintf("malformed flag '%s': missing flag name", e.Token)
}

func (e *MalformedFlagError) Error() string {
	return e.String()
}

type UnknownFlagError struct {
	Token string
}

func (e UnknownFlagError) String() string {
	return fmt.Sprintf("unknown flag '%s'", e.Token)
}

func (e *UnknownFlagError) Error() string {
	return e.String()
}
