package peerchat

import "context"

// ListRooms fetches the room catalog. Concurrent calls share a single
// upstream request, so a rapid re-render or double-tapped retry cannot
// double-fire the endpoint. There is no caching beyond that.
func (e *Engine) ListRooms(ctx context.Context) ([]Room, error) {
	// The upstream request outlives any one caller's cancellation; the
	// shared flight must not fail for everyone because the first caller
	// gave up. The REST client's timeout still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := e.flight.Do("rooms", func() (any, error) {
		return e.rest.ListRooms(fetchCtx)
	})
	if err != nil {
		return nil, WrapError(ErrorCatalogUnavailable, "room list fetch failed", err)
	}
	return v.([]Room), nil
}
