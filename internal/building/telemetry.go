package building

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("buildgen.building")

var (
	generateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buildgen_generate_total",
		Help: "Buildings generated by result and roof type",
	}, []string{"result", "roof"})

	generateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "buildgen_generate_duration_seconds",
		Help:    "Building generation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"roof"})

	wallsEmitted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buildgen_walls_emitted",
		Help:    "Wall segments emitted per building",
		Buckets: []float64{4, 8, 16, 32, 64, 128, 256, 512},
	})

	meshFaces = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buildgen_mesh_faces",
		Help:    "Faces left after merge and cleanup per building",
		Buckets: prometheus.ExponentialBuckets(8, 2, 12),
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buildgen_commands_total",
		Help: "Protocol commands executed by command and status",
	}, []string{"command", "status"})
)

func startGenerateSpan(ctx context.Context, s Spec) (context.Context, trace.Span) {
	return tracer.Start(ctx, "building.Generate",
		trace.WithAttributes(
			attribute.String("building.name", s.Name),
			attribute.Int64("building.seed", s.Seed),
			attribute.Int("building.floors", s.Floors),
			attribute.String("building.roof", s.Roof.String()),
		),
	)
}

// stage runs fn inside a child span named after the pipeline stage.
func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "building."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func recordGenerate(s Spec, b *Building, d time.Duration, err error) {
	roofName := s.Roof.String()
	if err != nil {
		generateTotal.WithLabelValues("error", roofName).Inc()
		return
	}
	generateTotal.WithLabelValues("success", roofName).Inc()
	generateDuration.WithLabelValues(roofName).Observe(d.Seconds())
	wallsEmitted.Observe(float64(b.WallsEmitted))
	meshFaces.Observe(float64(len(b.Mesh.Faces)))
}
