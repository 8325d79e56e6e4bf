// Package notify despacha eventos de dominio al colaborador de notificaciones.
// El despacho ocurre después del commit de la transacción que generó los
// eventos, y una falla de entrega se loguea pero nunca se propaga: la regla
// "la notificación jamás revierte una mutación de stock" está en la
// estructura, no en la disciplina del caller.
package notify

import (
	"context"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// Notifier es el puerto hacia el despachador externo de notificaciones
// (email, in-app). La implementación real queda fuera del núcleo.
type Notifier interface {
	Notify(ctx context.Context, ev event.Event) error
}

// Dispatcher entrega eventos al Notifier absorbiendo fallas.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
}

// NewDispatcher construye el despachador.
func NewDispatcher(notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log}
}

// Dispatch entrega cada evento; las fallas se loguean en warn y se siguen
// entregando los demás.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...event.Event) {
	if d == nil || d.notifier == nil {
		return
	}
	for _, ev := range events {
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.log.Warn().
				Err(err).
				Str("event", ev.Name()).
				Msg("falla entregando evento de dominio")
		}
	}
}

// LogNotifier implementación por defecto: escribe el evento al log. Sirve de
// sumidero en desarrollo y como punto de enganche para un dispatcher real.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify escribe el evento al log estructurado.
func (n *LogNotifier) Notify(ctx context.Context, ev event.Event) error {
	n.log.Info().
		Str("event", ev.Name()).
		Time("occurred_at", ev.OccurredAt()).
		Interface("payload", ev).
		Msg("evento de dominio")
	return nil
}
