package classifier

import "sort"

// labelEncoder maps category names to contiguous class indices. The label set
// is fixed at fit time; incremental updates cannot extend it.
type labelEncoder struct {
	index   map[string]int
	classes []string
}

// fitLabels builds an encoder over the unique labels, sorted for determinism.
func fitLabels(labels []string) *labelEncoder {
	seen := make(map[string]bool, len(labels))
	var classes []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return encoderFromClasses(classes)
}

func encoderFromClasses(classes []string) *labelEncoder {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &labelEncoder{classes: classes, index: index}
}

// transform returns the class index for a label, reporting whether the label
// is known.
func (e *labelEncoder) transform(label string) (int, bool) {
	i, ok := e.index[label]
	return i, ok
}

// inverse returns the label for a class index.
func (e *labelEncoder) inverse(i int) string {
	return e.classes[i]
}

// Classes returns the ordered label set.
func (e *labelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}
