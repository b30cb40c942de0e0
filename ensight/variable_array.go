package ensight

import (
	"fmt"
	"math"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/mesh"
)

// destinationComponent swaps the XZ and YZ components of symmetric tensors,
// which EnSight stores in the opposite order
func destinationComponent(src, numComponents int) int {
	if numComponents == 6 {
		switch src {
		case 4:
			return 5
		case 5:
			return 4
		}
	}
	return src
}

var nan32 = float32(math.NaN())

// readVariableArray reads n tuples of a variable, one component at a time.
// The section header may carry an "undef" sentinel, whose occurrences in
// any component become NaN, or "partial", where only the listed tuples are
// stored and the others are NaN.
func readVariableArray(f *ensfile.File, header string, n, numComponents int) (*mesh.FloatArray, error) {
	var (
		qualifier = variableQualifier(header)
		undef     float32
		partial   []int32
		err       error
	)
	switch qualifier {
	case "undef":
		if undef, err = f.ReadFloat(); err != nil {
			return nil, fmt.Errorf("reading undef value: %w", err)
		}
	case "partial":
		count, err := f.ReadInt()
		if err != nil {
			return nil, fmt.Errorf("reading partial count: %w", err)
		}
		if partial, err = f.ReadInts(int(count)); err != nil {
			return nil, fmt.Errorf("reading partial indices: %w", err)
		}
		for i, idx := range partial {
			if idx < 1 || int(idx) > n {
				return nil, fmt.Errorf("partial index %d out of range [1,%d]", idx, n)
			}
			partial[i] = idx - 1
		}
	}

	arr := mesh.NewFloatArray("", numComponents, n)
	if partial != nil {
		arr.Fill(nan32)
	}
	for comp := 0; comp < numComponents; comp++ {
		dest := destinationComponent(comp, numComponents)
		if partial != nil {
			values, err := f.ReadFloats(len(partial))
			if err != nil {
				return nil, err
			}
			for i, idx := range partial {
				arr.SetComponent(int(idx), dest, values[i])
			}
			continue
		}
		values, err := f.ReadFloats(n)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if qualifier == "undef" && v == undef {
				v = nan32
			}
			arr.SetComponent(i, dest, v)
		}
	}
	return arr, nil
}

// skipVariableArray moves past a variable section of n tuples without
// decoding it
func skipVariableArray(f *ensfile.File, header string, n, numComponents int) error {
	switch variableQualifier(header) {
	case "undef":
		if err := f.SkipNumbers(1); err != nil {
			return err
		}
	case "partial":
		count, err := f.ReadInt()
		if err != nil {
			return err
		}
		if err = f.SkipNumbers(int(count)); err != nil {
			return err
		}
		n = int(count)
	}
	for comp := 0; comp < numComponents; comp++ {
		if err := f.SkipNumbers(n); err != nil {
			return err
		}
	}
	return nil
}
