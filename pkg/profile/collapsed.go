package profile

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// maxLineSize bounds a single folded stack. Deep Java stacks easily exceed
// bufio's 64KiB default.
const maxLineSize = 16 << 20

// ReadCollapsed parses folded stacks from r into a tree rooted at a node
// called rootName.
//
// Each non-blank line is "frame;frame;...;frame weight". Lines starting
// with '#' are comments. Repeated stacks accumulate. The weight may be
// fractional but must be finite and non-negative.
func ReadCollapsed(r io.Reader, rootName string) (*Node, error) {
	root := NewRoot(rootName)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stack, value, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "line %d", lineNo)
		}
		root.Add(stack, value)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "read folded stacks")
	}
	if root.Value <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "profile has no samples")
	}
	return root, nil
}

func parseLine(line string) ([]string, float64, error) {
	i := strings.LastIndexAny(line, " \t")
	if i < 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidProfile, "missing weight in %q", truncate(line))
	}
	value, err := strconv.ParseFloat(line[i+1:], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidProfile, "invalid weight %q", line[i+1:])
	}
	frames := strings.Split(strings.TrimSpace(line[:i]), ";")
	stack := frames[:0]
	for _, f := range frames {
		if f != "" {
			stack = append(stack, f)
		}
	}
	if len(stack) == 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidProfile, "empty stack")
	}
	return stack, value, nil
}

func truncate(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// WriteCollapsed writes the tree as folded stacks, one line per node with
// self weight, in pre-order. Kind annotations are written back.
func WriteCollapsed(root *Node, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var path []string
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.Self > 0 && len(path) > 0 {
			bw.WriteString(strings.Join(path, ";"))
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(n.Self, 'f', -1, 64))
			bw.WriteByte('\n')
		}
		for _, c := range n.Children {
			path = append(path, annotate(c))
			visit(c)
			path = path[:len(path)-1]
		}
	}
	visit(root)
	return bw.Flush()
}

func annotate(n *Node) string {
	for suffix, k := range kindSuffixes {
		if k == n.Kind {
			return n.Name + suffix
		}
	}
	return n.Name
}
