package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/billziss-gh/golib/shlex"
)

type OpKind string

const (
	OpAdd   OpKind = "add"
	OpSub   OpKind = "sub"
	OpMul   OpKind = "mul"
	OpDiv   OpKind = "div"
	OpConst OpKind = "const"
	OpNeg   OpKind = "neg"
)

// Op is an integer callback described in a scenario, e.g. "add 1".
type Op struct {
	Kind OpKind
	N    int
}

// ParseOp parses a shell-like callback description. Lines starting with
// # are comments.
func ParseOp(spec string) (Op, error) {
	var args []string
	if runtime.GOOS == "windows" {
		args = shlex.Windows.Split(StripComments(spec))
	} else {
		args = shlex.Posix.Split(StripComments(spec))
	}

	if len(args) == 0 {
		return Op{}, fmt.Errorf("empty callback")
	}

	kind := OpKind(strings.ToLower(args[0]))
	switch kind {
	case OpNeg:
		if len(args) != 1 {
			return Op{}, fmt.Errorf("%s takes no argument", kind)
		}
		return Op{Kind: kind}, nil
	case OpAdd, OpSub, OpMul, OpDiv, OpConst:
		if len(args) != 2 {
			return Op{}, fmt.Errorf("%s takes exactly one argument", kind)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return Op{}, fmt.Errorf("%s: invalid argument '%s'", kind, args[1])
		}
		if kind == OpDiv && n == 0 {
			return Op{}, fmt.Errorf("div: division by zero")
		}
		return Op{Kind: kind, N: n}, nil
	default:
		return Op{}, fmt.Errorf("unknown callback '%s'", args[0])
	}
}

func (o Op) Apply(x int) int {
	switch o.Kind {
	case OpAdd:
		return x + o.N
	case OpSub:
		return x - o.N
	case OpMul:
		return x * o.N
	case OpDiv:
		return x / o.N
	case OpConst:
		return o.N
	case OpNeg:
		return -x
	default:
		return x
	}
}

func (o Op) String() string {
	if o.Kind == OpNeg {
		return string(o.Kind)
	}
	return fmt.Sprintf("%s %d", o.Kind, o.N)
}

func StripComments(cmdStr string) string {
	var cleanedLines []string
	for _, line := range strings.Split(cmdStr, "\n") {
		trimmed := strings.TrimSpace(line)
		// Skip comment lines
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}
	return strings.Join(cleanedLines, "\n")
}
