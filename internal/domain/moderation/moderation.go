package moderation

import "context"

// TextScreener is the synchronous profanity gate. It is authoritative at
// creation time: a hit marks the content mature and private before insert.
type TextScreener interface {
	// IsTextUnsafe reports whether any of the fields contains profanity.
	IsTextUnsafe(fields []string) bool
}

// MediaScreener checks media references for safety. Implementations call an
// external service and are only ever invoked off the request path.
type MediaScreener interface {
	// IsSafe reports whether every referenced media object is safe for work.
	IsSafe(ctx context.Context, mediaPaths []string) (bool, error)
}
