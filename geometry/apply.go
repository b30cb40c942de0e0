package geometry

import (
	"github.com/notargets/goensight/mesh"
)

// Step is one stage of a transform pipeline
type Step struct {
	Transform
	// ApplyToVectors transforms every 3 component array, not only the default
	// vectors
	ApplyToVectors bool
}

// Apply runs the transform on a shallow copy of ds and returns it. Points and
// transformed vector arrays are newly allocated, ds itself is not modified.
// Uniform and rectilinear grids come back as structured grids.
func Apply(ds mesh.DataSet, step Step) mesh.DataSet {
	out := mesh.AsStructured(ds).ShallowCopy()

	if ps, ok := out.(mesh.PointSet); ok {
		var (
			src = ps.Coordinates()
			dst = make([]float32, len(src))
		)
		for i := 0; i+2 < len(src); i += 3 {
			r := step.ApplyPoint([3]float64{float64(src[i]), float64(src[i+1]), float64(src[i+2])})
			dst[i], dst[i+1], dst[i+2] = float32(r[0]), float32(r[1]), float32(r[2])
		}
		ps.SetCoordinates(dst)
	}

	for _, at := range []*mesh.Attributes{out.PointData(), out.CellData()} {
		var targets []*mesh.FloatArray
		if step.ApplyToVectors {
			for _, a := range at.Arrays() {
				if fa, ok := a.(*mesh.FloatArray); ok && fa.NumComponents == 3 {
					targets = append(targets, fa)
				}
			}
		} else if v := at.Vectors(); v != nil {
			targets = append(targets, v)
		}
		for _, fa := range targets {
			at.AddArray(transformVectors(step.Transform, fa))
		}
	}
	return out
}

// Pipeline applies the steps in order
func Pipeline(ds mesh.DataSet, steps []Step) mesh.DataSet {
	for _, s := range steps {
		ds = Apply(ds, s)
	}
	return ds
}

func transformVectors(t Transform, fa *mesh.FloatArray) *mesh.FloatArray {
	out := mesh.NewFloatArray(fa.Name, 3, fa.NumTuples())
	for i := 0; i < fa.NumTuples(); i++ {
		v := fa.Tuple(i)
		r := t.ApplyVector([3]float64{float64(v[0]), float64(v[1]), float64(v[2])})
		out.Values[3*i], out.Values[3*i+1], out.Values[3*i+2] = float32(r[0]), float32(r[1]), float32(r[2])
	}
	return out
}
