package proxysdk

// effectiveScope temporarily re-points the host's current context so that
// host operations issued from inside a completion callback apply to the
// call's origin context. Exiting the scope unconditionally restores the
// previous active id/root id pair.
type effectiveScope struct {
	d         *Dispatcher
	name      string
	prior     uint32
	priorRoot uint32
}

// enterEffective asks the host to treat id as current. A host rejection
// means the context is no longer valid; the callback delivery must be
// abandoned.
func (d *Dispatcher) enterEffective(id, rootID uint32, name string) (*effectiveScope, bool) {
	if err := hostSetEffectiveContext(id); err != nil {
		logger.Debug().
			Str("for", name).
			Uint32("context_id", id).
			Uint32("root_id", rootID).
			Err(err).
			Msg("failed to assume context")
		return nil, false
	}
	scope := &effectiveScope{d: d, name: name, prior: d.activeID, priorRoot: d.activeRootID}
	d.activeID = id
	d.activeRootID = rootID
	return scope, true
}

// exit restores the previous active pair and best-effort restores the
// host's notion of current context. There is no safe corrective action for
// a restore failure, so it is only logged.
func (s *effectiveScope) exit() {
	if err := hostSetEffectiveContext(s.prior); err != nil {
		logger.Debug().Str("for", s.name).Err(err).Msg("failed to reset context")
	}
	s.d.activeID = s.prior
	s.d.activeRootID = s.priorRoot
}
