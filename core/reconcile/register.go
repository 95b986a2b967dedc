package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RegisterSeries makes name usable with the given units, reconciling the local
// registration with the identifiers persisted in the backing store.
// It returns false when name is empty or when a name/units conflict cannot be
// resolved; LastError describes the failure.
func (r *Record) RegisterSeries(ctx context.Context, name, units string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		r.lastErr = fmt.Errorf("%w: empty series name", ErrInvalidRequest)
		return false
	}

	if !r.ensureConnected(ctx) {
		return r.buffer.RegisterSeries(name, units)
	}

	caps := r.adapter.Capabilities()
	r.refreshIdentifiers(ctx)
	exists, unitsMatch, existing := r.ids.match(name, units, caps.SupportsUnitsColumn)

	l := r.logger.With(
		zap.String("name", name),
		zap.String("units", units),
		zap.String("existing_units", existing),
		zap.Bool("exists", exists),
		zap.Bool("units_match", unitsMatch),
	)

	if r.isReadOnly() {
		switch {
		case exists && unitsMatch:
			l.Debug("Series registered against read-only store")
			return r.buffer.RegisterSeries(name, units)
		case exists && caps.CanAssignUnits && existing == NoUnits:
			if !r.assignUnits(ctx, name, units) {
				return false
			}
			l.Debug("Units assigned to existing series")
			return r.buffer.RegisterSeries(name, units)
		default:
			r.lastErr = fmt.Errorf("%w: %q cannot be registered with units %q on a read-only store",
				ErrRegistrationConflict, name, units)
			l.Debug("Series registration refused")
			return false
		}
	}

	switch {
	case exists && unitsMatch:
		return r.buffer.RegisterSeries(name, units)

	case exists && existing == NoUnits && caps.CanAssignUnits:
		if !r.assignUnits(ctx, name, units) {
			return false
		}
		l.Debug("Units assigned to existing series")
		return r.buffer.RegisterSeries(name, units)

	case exists && existing != NoUnits:
		// units really differ: the old record and its points are dropped
		r.metrics.AdapterCall("remove_record")
		if err := r.adapter.RemoveRecord(ctx, name); err != nil {
			r.fail("remove_record", err)
			return false
		}
		r.ids.forget(name)
		r.buffer.ResetSeries(name)
		if r.last.id == name {
			r.last.clear()
		}
		l.Info("Series re-created with new units")
		return r.insertIdentifier(ctx, name, units)

	default:
		return r.insertIdentifier(ctx, name, units)
	}
}

// refreshIdentifiers reloads the identifier/units listing once its TTL has
// elapsed (must hold lock). On failure the previous listing is kept.
func (r *Record) refreshIdentifiers(ctx context.Context) {
	now := r.now()
	if !r.ids.IsExpired(now) {
		return
	}

	r.metrics.AdapterCall("list_identifiers")
	entries, err := r.adapter.ListIdentifiersAndUnits(ctx)
	if err != nil {
		r.fail("list_identifiers", err)
		return
	}
	r.ids.store(entries, now)
}

// insertIdentifier persists name and registers it locally (must hold lock).
func (r *Record) insertIdentifier(ctx context.Context, name, units string) bool {
	r.metrics.AdapterCall("insert_identifier")
	if err := r.adapter.InsertIdentifierAndUnits(ctx, name, units); err != nil {
		r.fail("insert_identifier", err)
		return false
	}
	r.ids.set(name, units)
	return r.buffer.RegisterSeries(name, units)
}

// assignUnits sets units on an existing identifier (must hold lock).
func (r *Record) assignUnits(ctx context.Context, name, units string) bool {
	r.metrics.AdapterCall("assign_units")
	if err := r.adapter.AssignUnitsToRecord(ctx, name, units); err != nil {
		r.fail("assign_units", err)
		return false
	}
	r.ids.set(name, units)
	return true
}
