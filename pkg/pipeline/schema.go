package pipeline

// Schema describes the columns of the feature matrix.
type Schema struct {
	FeatureNames []string
	Types        []string // "numeric" or "indicator"
}

// NewSchema marks the first nNumeric names as numeric and the rest as
// one-hot indicators.
func NewSchema(names []string, nNumeric int) Schema {
	types := make([]string, len(names))
	for i := range names {
		if i < nNumeric {
			types[i] = "numeric"
		} else {
			types[i] = "indicator"
		}
	}
	return Schema{FeatureNames: names, Types: types}
}

// Len returns the number of feature columns.
func (s Schema) Len() int { return len(s.FeatureNames) }

// Count returns how many columns have the given type.
func (s Schema) Count(typ string) int {
	n := 0
	for _, t := range s.Types {
		if t == typ {
			n++
		}
	}
	return n
}
