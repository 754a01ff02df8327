package tagging

// Kind is the type tag of a hydraulic structure.
type Kind string

const (
	KindWell  Kind = "well"
	KindDrain Kind = "drain"
	KindOther Kind = "other"
)

var allKinds = []Kind{
	KindWell,
	KindDrain,
	KindOther,
}

// aliases maps folded spellings seen in field forms to a kind.
var aliases = map[string]Kind{
	"well":               KindWell,
	"pozo":               KindWell,
	"pozo de inspeccion": KindWell,
	"manhole":            KindWell,
	"camara":             KindWell,
	"drain":              KindDrain,
	"storm drain":        KindDrain,
	"sumidero":           KindDrain,
	"imbornal":           KindDrain,
	"other":              KindOther,
	"otro":               KindOther,
	"estructura":         KindOther,
}

func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func IsValidKind(k Kind) bool {
	for _, known := range allKinds {
		if known == k {
			return true
		}
	}
	return false
}
