package stories

import "errors"

var (
	// ErrStoryNotFound means no story row exists for the id.
	ErrStoryNotFound = errors.New("story not found")
	// ErrActorNotFound means the acting user no longer exists.
	ErrActorNotFound = errors.New("acting user not found")
	// ErrAuthorNotFound means the story author no longer exists, which blocks
	// editor-scoped review decisions.
	ErrAuthorNotFound = errors.New("story author not found")
	// ErrForbidden means the actor lacks the role, permission, or
	// organization scope for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the story is not in a status that permits the
	// requested transition (e.g. approving a non-pending story).
	ErrInvalidState = errors.New("invalid story state")
	// ErrSlugTaken is returned by the store when an insert hits the slug
	// unique constraint; the caller retries with the next suffix.
	ErrSlugTaken = errors.New("slug already taken")
)
