package humgrid

var ManipulatorTokens = manipulatorTokens

func (g *Grid) MetricBarNumbers() []int { return g.metricBarNumbers() }

// SpinesAfter is the number of spines a staff of a manipulator slice leaves.
func SpinesAfter(s *Staff) int { return voicesAfter(s.Voices) }

func (s *Staff) CreateMatchedVoiceCount(n int, text string) error {
	return s.createMatchedVoiceCount(n, text)
}

func (g *Grid) SplitManipulators(passes int) error { return g.splitManipulators(passes) }
