// Package mapping holds the label and priority dictionaries applied during
// task normalization.
package mapping

// Canonical label categories.
const (
	LabelBug           = "bug"
	LabelFix           = "fix"
	LabelRefactor      = "refactor"
	LabelReview        = "review"
	LabelFeature       = "feature"
	LabelTodo          = "todo"
	LabelCommunication = "communication"
	LabelDesign        = "design"
	// LabelOther is the ambiguity bucket. Labels mapping to it are dropped.
	LabelOther = "other"
)

// nullLabel is the key used for labels that arrive as JSON null.
const nullLabel = "null"

var defaultLabels = map[string]string{
	"bug":              LabelBug,
	"invalid":          LabelFix,
	"🔨refactor":        LabelRefactor,
	"↩️ review":        LabelReview,
	"enhancement":      LabelFeature,
	"🧹chore":           LabelReview,
	"💼 internal":       LabelReview,
	"design":           LabelDesign,
	"feature":          LabelFeature,
	"java":             LabelFeature,
	"c#":               LabelFeature,
	"bitbucket":        LabelFeature,
	"documentation":    LabelReview,
	"need_feedback":    LabelCommunication,
	"php":              LabelFeature,
	"github":           LabelFeature,
	"🚧 wait others":    LabelCommunication,
	"gitlab":           LabelFeature,
	"python":           LabelFeature,
	"azure devops":     LabelFeature,
	"social media":     LabelTodo,
	"planning":         LabelReview,
	"newsletter":       LabelTodo,
	"duplicate":        LabelRefactor,
	"internal":         LabelTodo,
	"website":          LabelTodo,
	"content creation": LabelTodo,
	"js":               LabelFeature,
	"gitlab-private":   LabelFeature,
	"testing":          LabelReview,
	"Backlog":          LabelOther,
	"Publication":      LabelReview,
	"Upcoming":         LabelFeature,
	"Management":       LabelTodo,
	"Devops":           LabelFeature,
	"SW":               LabelTodo,
	"Web":              LabelTodo,
	"Accepted":         LabelOther,
	"Under review":     LabelReview,
	"Submitted":        LabelOther,
	"HW":               LabelTodo,
	"Deliverable":      LabelTodo,
	"Sprint 3":         LabelFeature,
	"Sprint 4":         LabelFeature,
	"Sprint":           LabelFeature,
	"Sprint 2":         LabelFeature,
	"Sprint 1":         LabelFeature,
	"Published":        LabelOther,
	"Design-Print":     LabelDesign,
	"Other":            LabelOther,
	"version 2.0":      LabelOther,
	"version 3.0":      LabelOther,
	"back-end":         LabelOther,
	"main task":        LabelFeature,
	"front-end":        LabelOther,
	"investigation":    LabelReview,
	"In progress":      LabelOther,
	"question":         LabelCommunication,
	"exploration":      LabelFeature,
	"help wanted":      LabelCommunication,
	"test":             LabelReview,
	"chore":            LabelTodo,
	"dependency":       LabelFix,
	"stream-sim":       LabelFeature,
	"Document":         LabelReview,
	"tektrain-api":     LabelTodo,
	"UI":               LabelOther,
	"#not-yet":         LabelOther,
	"urgent":           LabelFix,
	"AUTH":             LabelOther,
	"Delivered":        LabelOther,
	"usability":        LabelFix,
	"paas":             LabelFix,
	"New sprint":       LabelFeature,
	"wontfix":          LabelFix,
	"MustFix":          LabelFix,
	"Platform":         LabelOther,
	nullLabel:          LabelOther,
}

// Priority levels.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

var defaultPriorities = map[string]int{
	"none":   PriorityNone,
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
}

// Tables is the pair of dictionaries used by the normalizer.
// A Tables value is read-only once handed to a normalizer.
type Tables struct {
	Labels     map[string]string
	Priorities map[string]int
}

// DefaultTables returns a fresh copy of the built-in dictionaries.
func DefaultTables() Tables {
	t := Tables{
		Labels:     make(map[string]string, len(defaultLabels)),
		Priorities: make(map[string]int, len(defaultPriorities)),
	}
	for k, v := range defaultLabels {
		t.Labels[k] = v
	}
	for k, v := range defaultPriorities {
		t.Priorities[k] = v
	}
	return t
}

// Merge returns a copy of t with the given overrides applied on top.
// Nil override maps leave the corresponding table unchanged.
func (t Tables) Merge(labels map[string]string, priorities map[string]int) Tables {
	out := Tables{
		Labels:     make(map[string]string, len(t.Labels)+len(labels)),
		Priorities: make(map[string]int, len(t.Priorities)+len(priorities)),
	}
	for k, v := range t.Labels {
		out.Labels[k] = v
	}
	for k, v := range labels {
		out.Labels[k] = v
	}
	for k, v := range t.Priorities {
		out.Priorities[k] = v
	}
	for k, v := range priorities {
		out.Priorities[k] = v
	}
	return out
}

// MapLabels translates raw labels to canonical ones. Unknown labels pass
// through unchanged. The result keeps first-seen order, holds no duplicates
// and never contains LabelOther.
func (t Tables) MapLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, raw := range labels {
		key := raw
		if key == "" {
			key = nullLabel
		}
		mapped, ok := t.Labels[key]
		if !ok || mapped == "" {
			mapped = raw
		}
		if mapped == LabelOther || mapped == "" {
			continue
		}
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		out = append(out, mapped)
	}
	return out
}

// Priority returns the ordinal for a raw priority string.
// Missing or unrecognized priorities are PriorityNone.
func (t Tables) Priority(raw string) int {
	if p, ok := t.Priorities[raw]; ok {
		return p
	}
	return PriorityNone
}
