package domain

// TopicFit is the raw output of a topic-model primitive.
type TopicFit struct {
	// DocumentTopics holds one row per document, one column per topic.
	DocumentTopics [][]float64

	// TopicTerms holds one row per topic, one column per vocabulary term.
	TopicTerms [][]float64

	// Vocabulary maps term columns to their strings.
	Vocabulary []string
}

// TopicCount returns the number of topics in the fit.
func (f *TopicFit) TopicCount() int {
	if f == nil {
		return 0
	}
	return len(f.TopicTerms)
}

// Topic is a single fitted topic, immutable for the run.
type Topic struct {
	// ID is the topic's row index in the fit.
	ID int

	// TopTerms lists the K most-weighted terms, highest first.
	TopTerms []string

	// Weights is the topic's term-weight row.
	Weights []float64
}
