package api

import "context"

// publishJSON is fire-and-forget: the bus is optional and a lost event never
// aborts a session or bill state transition.
func (a *API) publishJSON(ctx context.Context, subject string, payload map[string]any) {
	if a.store.Bus == nil || subject == "" {
		return
	}
	if err := a.store.Bus.Publish(ctx, subject, payload); err != nil {
		a.log.Warn().Err(err).Str("subject", subject).Msg("event publish failed")
	}
}
