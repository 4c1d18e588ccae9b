// context.go propagates episode IDs through Go context.Context so sinks
// can tag persisted records with the episode that produced them.

package loopwatch

import "context"

// Context key type (unexported to avoid collisions)
type episodeIDKey struct{}

// WithEpisodeID returns a context with the episode ID attached.
func WithEpisodeID(ctx context.Context, episodeID string) context.Context {
	return context.WithValue(ctx, episodeIDKey{}, episodeID)
}

// EpisodeIDFromContext extracts the episode ID from context.
// Returns empty string and false if not set or if the ID is empty.
func EpisodeIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(episodeIDKey{})
	id, ok := v.(string)
	return id, ok && id != ""
}
