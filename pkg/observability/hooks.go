package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/knitout/pkg/generator"
)

// LoggingHooks logs every pass and course at debug level.
func LoggingHooks(logger *slog.Logger) generator.Hooks {
	return generator.Hooks{
		OnPass: func(ctx context.Context, e *generator.PassEvent) {
			logger.DebugContext(ctx, "pass",
				"course", e.Course,
				"type", e.Type.String(),
				"direction", e.Direction,
				"needles", e.Needles,
				"racking", e.Racking,
			)
		},
		OnCourse: func(ctx context.Context, e *generator.CourseEvent) {
			logger.DebugContext(ctx, "course",
				"course", e.Course,
				"loops", e.Loops,
				"transfers", e.Transfers,
				"racks", e.Racks,
			)
		},
	}
}

// Combine calls every hook in order.
func Combine(hooks ...generator.Hooks) generator.Hooks {
	return generator.Hooks{
		OnPass: func(ctx context.Context, e *generator.PassEvent) {
			for _, h := range hooks {
				if h.OnPass != nil {
					h.OnPass(ctx, e)
				}
			}
		},
		OnCourse: func(ctx context.Context, e *generator.CourseEvent) {
			for _, h := range hooks {
				if h.OnCourse != nil {
					h.OnCourse(ctx, e)
				}
			}
		},
	}
}
