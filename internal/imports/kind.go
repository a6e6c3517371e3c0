package imports

import "strings"

// Kind says where an import declaration is loaded from.
type Kind int

const (
	KindLocal Kind = iota
	KindNetwork
)

func (k Kind) String() string {
	if k == KindNetwork {
		return "network"
	}
	return "local"
}

var networkSchemes = []string{"http://", "https://"}

// Classify decides the Kind of a declaration by its URL scheme prefix.
func Classify(decl string) Kind {
	lower := strings.ToLower(strings.TrimSpace(decl))
	for _, scheme := range networkSchemes {
		if strings.HasPrefix(lower, scheme) {
			return KindNetwork
		}
	}
	return KindLocal
}
