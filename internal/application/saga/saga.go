// Package saga coordina escrituras multipaso sin transacción real: cada paso
// completado apila una compensación y, ante un fallo, las compensaciones se
// ejecutan en orden inverso. No hay aislamiento entre peticiones concurrentes;
// la garantía es secuencial y de mejor esfuerzo dentro de una petición.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Undo deshace un paso ya completado.
type Undo func(ctx context.Context) error

type step struct {
	label string
	undo  Undo
}

// Saga acumula compensaciones de pasos completados.
type Saga struct {
	name  string
	log   zerolog.Logger
	steps []step
}

// New crea una saga con nombre (para trazas) y logger.
func New(name string, log zerolog.Logger) *Saga {
	return &Saga{name: name, log: log}
}

// Push registra la compensación de un paso recién completado.
func (s *Saga) Push(label string, undo Undo) {
	s.steps = append(s.steps, step{label: label, undo: undo})
}

// Compensate ejecuta las compensaciones en orden inverso tras el fallo cause.
// Devuelve siempre un error: cause solo, o cause unido a los fallos de
// compensación (nunca se reportan como éxito parcial). Cada fallo de undo se
// registra además en el log.
func (s *Saga) Compensate(ctx context.Context, cause error) error {
	errs := []error{cause}
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := st.undo(ctx); err != nil {
			s.log.Error().Err(err).
				Str("saga", s.name).
				Str("paso", st.label).
				Msg("compensación fallida")
			errs = append(errs, fmt.Errorf("compensar %s/%s: %w", s.name, st.label, err))
		}
	}
	s.steps = nil
	return errors.Join(errs...)
}
