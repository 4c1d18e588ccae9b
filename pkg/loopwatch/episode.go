// episode.go owns detector lifetime across agent episodes.

package loopwatch

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// EpisodeController owns a Detector with process-wide lifetime and resets
// it at episode boundaries. Pass the controller (or its Detector) into
// whichever component records or queries errors; there is no package-level
// shared instance.
type EpisodeController struct {
	mu        sync.Mutex
	detector  *Detector
	episodeID string
	logger    *log.Logger
}

// NewEpisodeController wraps the given detector. A nil detector gets a
// default one.
func NewEpisodeController(d *Detector, logger *log.Logger) *EpisodeController {
	if d == nil {
		d = NewDetector()
	}
	return &EpisodeController{detector: d, logger: logger}
}

// Begin starts a new episode: it resets the detector, mints a fresh
// episode ID, and returns a context carrying that ID for sinks to pick up.
func (c *EpisodeController) Begin(ctx context.Context) (context.Context, string) {
	c.mu.Lock()
	c.episodeID = uuid.NewString()
	id := c.episodeID
	c.mu.Unlock()

	c.detector.Reset()
	if c.logger != nil {
		c.logger.Printf("loopwatch: episode %s started", id)
	}
	return WithEpisodeID(ctx, id), id
}

// Detector returns the controller's detector.
func (c *EpisodeController) Detector() *Detector {
	return c.detector
}

// EpisodeID returns the current episode ID, or "" before the first Begin.
func (c *EpisodeController) EpisodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.episodeID
}

// Finish ends the current episode: it flushes the detector's sink and
// returns the episode's final statistics. The detector keeps its history
// until the next Begin, so post-episode queries still work.
func (c *EpisodeController) Finish(ctx context.Context) Statistics {
	stats := c.detector.Statistics()
	if err := c.detector.Flush(ctx); err != nil && c.logger != nil {
		c.logger.Printf("loopwatch: flush at episode end failed: %v", err)
	}
	if c.logger != nil {
		c.logger.Printf("loopwatch: episode %s finished with %d errors", c.EpisodeID(), stats.TotalErrors)
	}
	return stats
}
