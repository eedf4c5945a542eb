package intent

import "fmt"

// Label names an intention.
type Label string

// The intention set, in enumeration order.
const (
	Celebration   Label = "celebration"
	Encouragement Label = "encouragement"
	Funny         Label = "funny"
	Gratitude     Label = "gratitude"
	Happiness     Label = "happiness"
	Love          Label = "love"
	Positivity    Label = "positivity"
	Question      Label = "question"
	Sadness       Label = "sadness"
)

var labels = []Label{
	Celebration,
	Encouragement,
	Funny,
	Gratitude,
	Happiness,
	Love,
	Positivity,
	Question,
	Sadness,
}

var emojis = map[Label]string{
	Celebration:   "🎉",
	Encouragement: "💪",
	Funny:         "😂",
	Gratitude:     "🙏",
	Happiness:     "😊",
	Love:          "❤️",
	Positivity:    "👍",
	Question:      "❓",
	Sadness:       "😢",
}

// Labels returns the intention set in enumeration order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// Known reports whether l belongs to the intention set.
func (l Label) Known() bool {
	_, ok := emojis[l]
	return ok
}

// Emoji returns the emoji tagged onto messages of this intention,
// or an empty string for labels outside the set.
func (l Label) Emoji() string {
	return emojis[l]
}

// ParseLabel validates s against the intention set.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return l, nil
}
