package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/metrics"
	"github.com/san-kum/fdsynth/internal/sim"
)

const sampleRate = 44100

var _ = Describe("Renderer", func() {
	var registry *instruments.Registry

	BeforeEach(func() {
		registry = instruments.NewRegistry()
	})

	render := func(name string, cfg sim.Config) *sim.Result {
		patch, err := registry.Get(name, sampleRate)
		Expect(err).NotTo(HaveOccurred())
		r := sim.New(patch)
		for _, m := range metrics.Defaults(sampleRate) {
			r.AddMetric(m)
		}
		result, err := r.Render(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	Context("with every built-in patch", func() {
		for _, name := range instruments.NewRegistry().List() {
			name := name
			It("renders "+name+" without muting", func() {
				result := render(name, sim.Config{SampleRate: sampleRate, Duration: 0.25})

				Expect(result.Samples).To(HaveLen(sampleRate / 4))
				Expect(result.Unstable).To(BeFalse())
				Expect(result.Metrics).To(HaveKeyWithValue("stability", 1.0))
				Expect(result.Metrics["peak"]).To(BeNumerically(">", 0))
				Expect(result.Metrics["peak"]).To(BeNumerically("<=", sim.DefaultMuteThreshold))
				Expect(result.Metrics["solver_failures"]).To(BeNumerically("==", result.SolverFailures))
			})
		}
	})

	Context("when the note is released", func() {
		It("decays faster than a held note", func() {
			held := render("plucked-string", sim.Config{SampleRate: sampleRate, Duration: 0.5})
			released := render("plucked-string", sim.Config{SampleRate: sampleRate, Duration: 0.5, ReleaseAt: 0.1})

			tail := func(r *sim.Result) float64 {
				var peak float64
				for _, v := range r.Samples[len(r.Samples)-4410:] {
					peak = math.Max(peak, math.Abs(v))
				}
				return peak
			}
			Expect(tail(released)).To(BeNumerically("<", tail(held)/2))
		})
	})

	Context("when the gain pushes the output past the mute threshold", func() {
		It("mutes and reports instability", func() {
			result := render("oscillator", sim.Config{SampleRate: sampleRate, Duration: 0.01, Gain: 10})

			Expect(result.Unstable).To(BeTrue())
			Expect(result.Errors).NotTo(BeEmpty())
			Expect(result.Errors[0]).To(MatchError(sim.ErrUnstable))
			Expect(result.Metrics["stability"]).To(BeNumerically("<", 1))
		})
	})

	Context("when streaming", func() {
		It("delivers the same samples as an in-memory render", func() {
			cfg := sim.Config{SampleRate: sampleRate, Duration: 0.05}
			want := render("struck-string", cfg).Samples

			patch, err := registry.Get("struck-string", sampleRate)
			Expect(err).NotTo(HaveOccurred())
			got := make([]float64, 0, len(want))
			_, err = sim.New(patch).Stream(context.Background(), cfg, 256, func(block []float64) error {
				got = append(got, block...)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("renders jobs in parallel and keeps their order", func() {
		e := sim.NewEnsemble(instruments.NewRegistry(), 4).WithMetrics(func() []sim.Metric {
			return []sim.Metric{metrics.NewPeak()}
		})

		jobs := make([]sim.Job, 0, 6)
		for _, amp := range []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6} {
			jobs = append(jobs, sim.Job{
				Patch:  "oscillator",
				Params: map[string]float64{"amplitude": amp},
				Config: sim.Config{SampleRate: sampleRate, Duration: 0.01},
			})
		}

		results, err := e.Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(jobs)))
		for i, r := range results {
			amp := jobs[i].Params["amplitude"]
			Expect(r.Metrics["peak"]).To(BeNumerically("~", amp, amp*0.01))
		}
	})

	It("fails on an unknown parameter", func() {
		e := sim.NewEnsemble(instruments.NewRegistry(), 0)
		_, err := e.Run(context.Background(), []sim.Job{{
			Patch:  "oscillator",
			Params: map[string]float64{"nope": 1},
			Config: sim.Config{SampleRate: sampleRate, Duration: 0.01},
		}})
		Expect(err).To(MatchError(instruments.ErrUnknownParam))
	})

	It("fails on an unknown patch", func() {
		e := sim.NewEnsemble(instruments.NewRegistry(), 2)
		_, err := e.Run(context.Background(), []sim.Job{{
			Patch:  "kazoo",
			Config: sim.Config{SampleRate: sampleRate, Duration: 0.01},
		}})
		Expect(err).To(MatchError(instruments.ErrUnknownPatch))
	})
})
