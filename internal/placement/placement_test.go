package placement_test

import (
	"math"
	"testing"

	"spreadgen/internal/placement"
)

func TestSampleStaysWithinClampBounds(t *testing.T) {
	sampler := placement.NewSampler(placement.WithSeed(42))
	params := sampler.Params()
	for i := range 10000 {
		p := sampler.Sample()
		if p.X < params.MinX || p.X > params.MaxX {
			t.Fatalf("trial %d: x %v outside [%v, %v]", i, p.X, params.MinX, params.MaxX)
		}
		if p.Y < params.MinY || p.Y > params.MaxY {
			t.Fatalf("trial %d: y %v outside [%v, %v]", i, p.Y, params.MinY, params.MaxY)
		}
		if p.Rotation < 0 || p.Rotation > 360 || p.Rotation != math.Trunc(p.Rotation) {
			t.Fatalf("trial %d: rotation %v not an integer in [0, 360]", i, p.Rotation)
		}
	}
}

func TestSampleClipsRatherThanResamples(t *testing.T) {
	params := placement.DefaultParams()
	params.MeanX = 5
	params.MeanY = -5
	params.StdDevX = 0.01
	params.StdDevY = 0.01
	sampler := placement.NewSampler(placement.WithSeed(7), placement.WithParams(params))

	p := sampler.Sample()
	if p.X != params.MaxX {
		t.Fatalf("expected x clipped to %v, got %v", params.MaxX, p.X)
	}
	if p.Y != params.MinY {
		t.Fatalf("expected y clipped to %v, got %v", params.MinY, p.Y)
	}
}

func TestSampleWithOverridesSkipsClamping(t *testing.T) {
	sampler := placement.NewSampler(placement.WithSeed(1))
	x, y, r := 1.5, -0.25, 400.0
	p := sampler.SampleWith(placement.Override{X: &x, Y: &y, Rotation: &r})
	if p.X != x || p.Y != y || p.Rotation != r {
		t.Fatalf("expected explicit values verbatim, got %+v", p)
	}
}

func TestSampleWithPartialOverride(t *testing.T) {
	sampler := placement.NewSampler(placement.WithSeed(3))
	r := 90.0
	p := sampler.SampleWith(placement.Override{Rotation: &r})
	if p.Rotation != 90 {
		t.Fatalf("expected rotation 90, got %v", p.Rotation)
	}
	if p.X < 0 || p.X > 0.71 {
		t.Fatalf("expected sampled x in bounds, got %v", p.X)
	}
}

func TestSeededSamplersAreDeterministic(t *testing.T) {
	a := placement.NewSampler(placement.WithSeed(99))
	b := placement.NewSampler(placement.WithSeed(99))
	for range 50 {
		if pa, pb := a.Sample(), b.Sample(); pa != pb {
			t.Fatalf("expected identical sequences, got %+v and %+v", pa, pb)
		}
	}
}

func TestSampleMeanNearConfiguredCenter(t *testing.T) {
	params := placement.DefaultParams()
	params.MinX, params.MaxX = -10, 10
	params.MinY, params.MaxY = -10, 10
	sampler := placement.NewSampler(placement.WithSeed(5), placement.WithParams(params))

	const trials = 20000
	var sumX, sumY float64
	for range trials {
		p := sampler.Sample()
		sumX += p.X
		sumY += p.Y
	}
	if got := sumX / trials; math.Abs(got-params.MeanX) > 0.01 {
		t.Fatalf("mean x %v too far from %v", got, params.MeanX)
	}
	if got := sumY / trials; math.Abs(got-params.MeanY) > 0.01 {
		t.Fatalf("mean y %v too far from %v", got, params.MeanY)
	}
}

func TestProjections(t *testing.T) {
	p := placement.At(0.5, 0.5, 45)
	if p.PreviewX() != 0 || p.PreviewY() != 0 {
		t.Fatalf("expected centered preview, got %d,%d", p.PreviewX(), p.PreviewY())
	}
	// hypot(74,124) = 144.40...; (144.40-74)/2 = 35.2, (144.40-124)/2 = 10.2
	if got := p.TemplateX(); got != 364 {
		t.Fatalf("expected template x 364, got %d", got)
	}
	if got := p.TemplateY(); got != 289 {
		t.Fatalf("expected template y 289, got %d", got)
	}
	if p.TemplateRotation() != 45 || p.PreviewRotation() != 45 {
		t.Fatalf("unexpected rotation projections: %v %v", p.TemplateRotation(), p.PreviewRotation())
	}

	origin := placement.At(0, 0, 0)
	if origin.PreviewX() != -200 || origin.PreviewY() != -150 {
		t.Fatalf("unexpected preview origin: %d,%d", origin.PreviewX(), origin.PreviewY())
	}
	if origin.TemplateX() != -36 || origin.TemplateY() != -11 {
		t.Fatalf("unexpected template origin: %d,%d", origin.TemplateX(), origin.TemplateY())
	}
}

func TestWithParamsSwapsInvertedBounds(t *testing.T) {
	params := placement.DefaultParams()
	params.RotationMin, params.RotationMax = 90, 10
	params.MinX, params.MaxX = 0.5, 0.1

	sampler := placement.NewSampler(placement.WithSeed(3), placement.WithParams(params))
	got := sampler.Params()
	if got.RotationMin != 10 || got.RotationMax != 90 || got.MinX != 0.1 || got.MaxX != 0.5 {
		t.Fatalf("expected swapped bounds, got %+v", got)
	}
	for i := range 1000 {
		p := sampler.Sample()
		if p.Rotation < 10 || p.Rotation > 90 {
			t.Fatalf("trial %d: rotation %v outside [10, 90]", i, p.Rotation)
		}
		if p.X < 0.1 || p.X > 0.5 {
			t.Fatalf("trial %d: x %v outside [0.1, 0.5]", i, p.X)
		}
	}
}
