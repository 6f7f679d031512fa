package observation

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for debug tracing of accesses, mutations
// and watch registrations. Passing nil restores slog.Default().
//
// Tracing is emitted at slog.LevelDebug; with the default handler it is
// filtered out.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger set with SetLogger, or slog.Default().
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// debugLogger returns the logger if debug records would be emitted.
func debugLogger() (*slog.Logger, bool) {
	l := Logger()
	return l, l.Enabled(context.Background(), slog.LevelDebug)
}

func logAccess(r *Registrar, p PropertyID, tracked bool) {
	if l, ok := debugLogger(); ok {
		l.Debug("access",
			slog.Uint64("registrar", r.ID()),
			slog.String("property", p.Name()),
			slog.Bool("tracked", tracked),
		)
	}
}

func logMutation(r *Registrar, p PropertyID, fired int) {
	if l, ok := debugLogger(); ok {
		l.Debug("withMutation",
			slog.Uint64("registrar", r.ID()),
			slog.String("property", p.Name()),
			slog.Int("fired", fired),
		)
	}
}

func logRegister(r *Registrar, w *watch) {
	if l, ok := debugLogger(); ok {
		names := make([]string, len(w.properties))
		for i, p := range w.properties {
			names[i] = p.Name()
		}
		l.Debug("registerWatch",
			slog.Uint64("registrar", r.ID()),
			slog.String("watch", w.id.String()),
			slog.Any("properties", names),
		)
	}
}

func logCancel(r *Registrar, id WatchID, removed bool) {
	if l, ok := debugLogger(); ok {
		l.Debug("cancelWatch",
			slog.Uint64("registrar", r.ID()),
			slog.String("watch", id.String()),
			slog.Bool("removed", removed),
		)
	}
}

func logScope(o *Observation) {
	if l, ok := debugLogger(); ok {
		l.Debug("tracking scope closed",
			slog.Int("registrars", o.registrars),
			slog.Int("dependencies", o.dependencies),
		)
	}
}

func logFire(o *Observation) {
	if l, ok := debugLogger(); ok {
		l.Debug("observation fired",
			slog.Int("registrars", o.registrars),
			slog.Int("dependencies", o.dependencies),
		)
	}
}
