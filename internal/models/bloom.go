package models

// BloomLevels are the ordered cognitive-complexity tags used to phrase
// question difficulty for standard sessions.
var BloomLevels = []string{
	"REMEMBER",
	"UNDERSTAND",
	"APPLY",
	"ANALYZE",
	"EVALUATE",
	"CREATE",
}

// IncludedBloomLevels returns the selected level plus everything below it.
// Unknown levels yield an empty slice.
func IncludedBloomLevels(selected string) []string {
	for i, level := range BloomLevels {
		if level == selected {
			return BloomLevels[:i+1]
		}
	}
	return nil
}
