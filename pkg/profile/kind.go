package profile

import (
	"strings"
)

// Kind is the execution mode of a frame.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInterpreted
	KindCompiled
	KindJIT
	KindInlined
	KindNative
	KindKernel
)

var kindNames = [...]string{"unknown", "interpreted", "compiled", "jit", "inlined", "native", "kernel"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ParseKind parses the name returned by [Kind.String].
func ParseKind(s string) Kind {
	for i, name := range kindNames {
		if name == s {
			return Kind(i)
		}
	}
	return KindUnknown
}

// async-profiler frame type annotations.
var kindSuffixes = map[string]Kind{
	"_[0]": KindInterpreted,
	"_[1]": KindCompiled,
	"_[j]": KindJIT,
	"_[i]": KindInlined,
	"_[k]": KindKernel,
}

// ParseName strips the frame type annotation from a folded-stack frame.
// Frames without one are native when they look like C symbols and unknown
// otherwise.
func ParseName(raw string) (string, Kind) {
	if len(raw) > 4 {
		if k, ok := kindSuffixes[raw[len(raw)-4:]]; ok {
			return raw[:len(raw)-4], k
		}
	}
	if raw == "" {
		return raw, KindUnknown
	}
	if !strings.ContainsAny(raw, "./:") && !strings.HasPrefix(raw, "[") {
		return raw, KindNative
	}
	return raw, KindUnknown
}

// Group returns the package part of a frame name, used as its color key:
//
//	java/util/HashMap.get          -> java/util
//	github.com/a/b.(*T).Run        -> github.com/a/b
//	std::vector<int>::push_back    -> std::vector<int>
//	main.run                       -> main
//
// Names with no recognizable package are their own group.
func Group(name string) string {
	if i := strings.LastIndex(name, "::"); i > 0 {
		return name[:i]
	}
	slash := strings.LastIndexByte(name, '/')
	rest := name[slash+1:]
	if slash >= 0 && strings.Contains(name[:slash], ".") {
		// Go import path: the package ends at the first dot after the
		// last slash.
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			return name[:slash+1+dot]
		}
		return name
	}
	if slash >= 0 {
		return name[:slash]
	}
	if dot := strings.IndexByte(name, '.'); dot > 0 {
		return name[:dot]
	}
	return name
}

var runtimePrefixes = []string{"java.", "javax.", "sun.", "com.sun.", "com.oracle.", "com.ibm.", "java/", "javax/", "sun/", "jdk/", "runtime.", "runtime/"}

// IsRuntime reports whether the frame belongs to a language runtime or its
// standard library rather than to application code.
func IsRuntime(name string) bool {
	for _, p := range runtimePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// ShortName drops the package path of a frame name, keeping the type and
// function: "java/util/HashMap.get" becomes "HashMap.get".
func ShortName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

// FuncName keeps only the last component of a frame name: "HashMap.get"
// becomes "get".
func FuncName(name string) string {
	name = ShortName(name)
	if i := strings.LastIndexAny(name, ".:"); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}
