package transform

import (
	"fmt"
	"math"
	"strings"
)

// evalCall dispatches method-style and free function calls. The function set
// is closed: anything not listed here fails, which is the sandbox boundary —
// user expressions can never reach code outside this file.
func evalCall(n *callNode) (interface{}, error) {
	args := make([]interface{}, len(n.args))
	for i, a := range n.args {
		v, err := evaluate(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if n.receiver == nil {
		return evalFreeFunc(n.name, args)
	}

	recv, err := evaluate(n.receiver)
	if err != nil {
		return nil, err
	}
	return evalMethod(n.name, recv, args)
}

func evalFreeFunc(name string, args []interface{}) (interface{}, error) {
	switch name {
	case "round", "floor", "ceil", "abs":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		f, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		switch name {
		case "round":
			return math.Round(f), nil
		case "floor":
			return math.Floor(f), nil
		case "ceil":
			return math.Ceil(f), nil
		default:
			return math.Abs(f), nil
		}
	case "concat":
		var b strings.Builder
		for _, a := range args {
			b.WriteString(concatText(a))
		}
		return b.String(), nil
	}
	return nil, fmt.Errorf("unknown function %q", name)
}

func evalMethod(name string, recv interface{}, args []interface{}) (interface{}, error) {
	switch r := recv.(type) {
	case string:
		return evalStringMethod(name, r, args)
	case []interface{}:
		return evalListMethod(name, r, args)
	case float64:
		// Numeric methods mirror the free functions for JS-flavored input
		// like (1.5).round() — rarely written, cheap to accept.
		return evalFreeFunc(name, append([]interface{}{r}, args...))
	case nil:
		return nil, fmt.Errorf("cannot call %s on undefined", name)
	}
	return nil, fmt.Errorf("cannot call %s on a %s", name, typeName(recv))
}

func evalStringMethod(name, s string, args []interface{}) (interface{}, error) {
	switch name {
	case "substring":
		start, end, err := rangeArgs(args, len(s), false)
		if err != nil {
			return nil, err
		}
		if start > end {
			start, end = end, start
		}
		return s[start:end], nil
	case "slice":
		start, end, err := rangeArgs(args, len(s), true)
		if err != nil {
			return nil, err
		}
		if start > end {
			return "", nil
		}
		return s[start:end], nil
	case "toUpperCase":
		return strings.ToUpper(s), nil
	case "toLowerCase":
		return strings.ToLower(s), nil
	case "trim":
		return strings.TrimSpace(s), nil
	case "replace":
		if len(args) != 2 {
			return nil, fmt.Errorf("replace expects 2 arguments, got %d", len(args))
		}
		old, new_ := concatText(args[0]), concatText(args[1])
		// First occurrence only, like the JS method it mimics.
		return strings.Replace(s, old, new_, 1), nil
	case "replaceAll":
		if len(args) != 2 {
			return nil, fmt.Errorf("replaceAll expects 2 arguments, got %d", len(args))
		}
		return strings.ReplaceAll(s, concatText(args[0]), concatText(args[1])), nil
	case "split":
		if len(args) != 1 {
			return nil, fmt.Errorf("split expects 1 argument, got %d", len(args))
		}
		parts := strings.Split(s, concatText(args[0]))
		out := make([]interface{}, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	case "indexOf":
		if len(args) != 1 {
			return nil, fmt.Errorf("indexOf expects 1 argument, got %d", len(args))
		}
		return float64(strings.Index(s, concatText(args[0]))), nil
	case "includes":
		if len(args) != 1 {
			return nil, fmt.Errorf("includes expects 1 argument, got %d", len(args))
		}
		return strings.Contains(s, concatText(args[0])), nil
	case "startsWith":
		if len(args) != 1 {
			return nil, fmt.Errorf("startsWith expects 1 argument, got %d", len(args))
		}
		return strings.HasPrefix(s, concatText(args[0])), nil
	case "endsWith":
		if len(args) != 1 {
			return nil, fmt.Errorf("endsWith expects 1 argument, got %d", len(args))
		}
		return strings.HasSuffix(s, concatText(args[0])), nil
	case "charAt":
		if len(args) != 1 {
			return nil, fmt.Errorf("charAt expects 1 argument, got %d", len(args))
		}
		i, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		idx := int(i)
		if idx < 0 || idx >= len(s) {
			return "", nil
		}
		return string(s[idx]), nil
	case "concat":
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			b.WriteString(concatText(a))
		}
		return b.String(), nil
	}
	return nil, fmt.Errorf("unknown string method %q", name)
}

func evalListMethod(name string, list []interface{}, args []interface{}) (interface{}, error) {
	switch name {
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = concatText(args[0])
		}
		parts := make([]string, len(list))
		for i, v := range list {
			parts[i] = concatText(v)
		}
		return strings.Join(parts, sep), nil
	}
	return nil, fmt.Errorf("unknown list method %q", name)
}

// rangeArgs resolves (start[, end]) arguments against a length. When
// allowNegative is set, negative positions count back from the end (slice
// semantics); otherwise they clamp to 0 (substring semantics).
func rangeArgs(args []interface{}, length int, allowNegative bool) (int, int, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, 0, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	}
	startF, err := asNumber(args[0])
	if err != nil {
		return 0, 0, err
	}
	endF := float64(length)
	if len(args) == 2 {
		endF, err = asNumber(args[1])
		if err != nil {
			return 0, 0, err
		}
	}

	resolve := func(f float64) int {
		i := int(f)
		if i < 0 {
			if allowNegative {
				i += length
			}
			if i < 0 {
				i = 0
			}
		}
		if i > length {
			i = length
		}
		return i
	}
	return resolve(startF), resolve(endF), nil
}
