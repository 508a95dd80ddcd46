package focus

import (
	"context"
	"errors"
	"slices"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
)

// DefaultRelatedFallbackDistance is how far apart two window ids may be and
// still count as related when the tree cannot be queried. It approximates
// servers handing out adjacent ids to windows created together; it is not an
// ownership test.
const DefaultRelatedFallbackDistance = 1

var errNoTree = errors.New("no window tree to query")

// RelationCache remembers the parent and children of one subject window.
// Querying a window that was already destroyed or unmapped can fail, so the
// result of the last successful query is kept until a different subject is
// asked about.
type RelationCache struct {
	tree             platform.WindowTree
	fallbackDistance uint32

	subject model.WindowID
	// related is {parent, subject, children...}; nil means nothing cached.
	related []model.WindowID
}

// NewRelationCache returns an empty cache querying tree.
func NewRelationCache(tree platform.WindowTree, fallbackDistance uint32) *RelationCache {
	return &RelationCache{
		tree:             tree,
		fallbackDistance: fallbackDistance,
	}
}

// Related reports whether candidate is subject itself, its parent or one of
// its direct children. When the tree query fails it falls back to comparing
// identifiers.
func (c *RelationCache) Related(ctx context.Context, subject, candidate model.WindowID) bool {
	// New windows may not be queryable yet; equality needs no query.
	if subject == candidate {
		return true
	}
	if err := c.load(ctx, subject); err != nil {
		logger.Debugf(ctx, "tree query for %s failed, comparing ids instead: %v", subject, err)
		return subject.Distance(candidate) <= c.fallbackDistance
	}
	return slices.Contains(c.related, candidate)
}

// Subject returns the window the cache currently holds, if any.
func (c *RelationCache) Subject() (model.WindowID, bool) {
	return c.subject, c.related != nil
}

// Invalidate drops the cached entry.
func (c *RelationCache) Invalidate() {
	c.subject = model.None
	c.related = nil
}

func (c *RelationCache) load(ctx context.Context, subject model.WindowID) error {
	if c.related != nil && c.subject == subject {
		return nil
	}
	if c.tree == nil {
		return errNoTree
	}

	logger.Tracef(ctx, "querying tree of %s", subject)
	w, err := c.tree.QueryTree(ctx, subject)
	if err != nil {
		return err
	}

	related := make([]model.WindowID, 0, 2+len(w.Children))
	related = append(related, w.Parent, subject)
	related = append(related, w.Children...)

	c.related = related
	c.subject = subject
	return nil
}
