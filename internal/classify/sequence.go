package classify

import (
	"strings"

	"github.com/aeromaint/docval/internal/rules"
)

// ResolveBehavior maps a row's sequence code to its validation behavior
// mode: exact rule match first, then the longest matching prefix, and
// BehaviorDefault when nothing matches or the code is absent.
func ResolveBehavior(sequenceCode string, seqRules []rules.SeqRule) rules.BehaviorMode {
	code := strings.TrimSpace(sequenceCode)
	if code == "" {
		return rules.BehaviorDefault
	}

	for _, r := range seqRules {
		if code == r.Prefix {
			return r.Mode
		}
	}

	best := -1
	mode := rules.BehaviorDefault
	for _, r := range seqRules {
		if strings.HasPrefix(code, r.Prefix) && len(r.Prefix) > best {
			best = len(r.Prefix)
			mode = r.Mode
		}
	}
	return mode
}
