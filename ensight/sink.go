package ensight

import "github.com/notargets/goensight/ensight/ensfile"

// sink receives the bulk values of a geometry section. A discarding sink
// moves past them without decoding, which is how unselected parts and the
// metadata pass walk the file. Counts that drive the layout are always read.
type sink struct {
	f       *ensfile.File
	discard bool
}

func readSink(f *ensfile.File) sink    { return sink{f: f} }
func discardSink(f *ensfile.File) sink { return sink{f: f, discard: true} }

func (s sink) ints(n int) ([]int32, error) {
	if s.discard {
		return nil, s.f.SkipNumbers(n)
	}
	return s.f.ReadInts(n)
}

func (s sink) floats(n int) ([]float32, error) {
	if s.discard {
		return nil, s.f.SkipNumbers(n)
	}
	return s.f.ReadFloats(n)
}

// coordinates reads three component arrays of n values and interleaves them
func (s sink) coordinates(n int) ([]float32, error) {
	var pts []float32
	if !s.discard {
		pts = make([]float32, 3*n)
	}
	for c := 0; c < 3; c++ {
		comp, err := s.floats(n)
		if err != nil {
			return nil, err
		}
		for i, v := range comp {
			pts[3*i+c] = v
		}
	}
	return pts, nil
}
