package zammad

import (
	"context"
	"fmt"

	"github.com/goliatone/go-kb-export/internal/logging"
)

// TagResolver fetches per-article tags and degrades instead of failing: a
// permission problem on the tag endpoint must never abort an export, since
// tag absence does not invalidate the rest of the content.
type TagResolver struct {
	client *Client
	logger logging.Logger

	// denied latches on the first 403 so the permission warning is logged
	// once rather than per answer.
	denied bool
}

// NewTagResolver builds a resolver on top of the shared client.
func NewTagResolver(client *Client, logger logging.Logger) *TagResolver {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &TagResolver{client: client, logger: logger}
}

// TagsFor returns the tags for an answer. On any failure it returns an
// empty set plus a non-nil warning describing the degradation; the warning
// is informational and the returned slice is always safe to use.
func (r *TagResolver) TagsFor(ctx context.Context, answerID int) ([]string, error) {
	if r.denied {
		return nil, nil
	}

	tags, err := r.client.Tags(ctx, answerID)
	if err == nil {
		return tags, nil
	}

	if IsAuth(err) {
		r.denied = true
		warning := fmt.Errorf("tags skipped: the token needs 'admin.tag' permission (or an Agent role) in addition to knowledge_base.reader: %w", err)
		r.logger.Warn(warning.Error())
		return nil, warning
	}

	warning := fmt.Errorf("could not fetch tags for answer %d: %w", answerID, err)
	r.logger.Warn("tag fetch degraded", "answer_id", answerID, "error", err)
	return nil, warning
}

// Denied reports whether the resolver latched a permission denial.
func (r *TagResolver) Denied() bool {
	return r.denied
}
