// Package toxicity flags abusive messages using a multi-label toxicity
// model served by a Text Embeddings Inference /predict endpoint.
package toxicity

// Category is one toxicity label of the model.
type Category string

// Categories in check order; the first one over threshold names the verdict.
const (
	IdentityAttack Category = "identity_attack"
	Insult         Category = "insult"
	Obscene        Category = "obscene"
	SevereToxicity Category = "severe_toxicity"
	SexualExplicit Category = "sexual_explicit"
	Threat         Category = "threat"
	Toxicity       Category = "toxicity"
)

var categories = []Category{
	IdentityAttack,
	Insult,
	Obscene,
	SevereToxicity,
	SexualExplicit,
	Threat,
	Toxicity,
}

var emojis = map[Category]string{
	IdentityAttack: "🚫",
	Insult:         "😡",
	Obscene:        "🔞",
	SevereToxicity: "💀",
	SexualExplicit: "🔞",
	Threat:         "⚠️",
	Toxicity:       "⚠️",
}

// Categories returns the categories in check order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Emoji returns the emoji shown in place of an intention for toxic messages.
func (c Category) Emoji() string {
	return emojis[c]
}
