package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jacentio/valnk/internal/keys"
)

// ErrEmptyID is returned when an explicitly supplied identifier is empty.
var ErrEmptyID = errors.New("valnk: empty entity id")

// SubmissionID identifies a submission.
type SubmissionID string

// CommentID identifies a comment.
type CommentID string

// ReplyID identifies a reply.
type ReplyID string

// NewSubmissionID returns a random submission id.
func NewSubmissionID() SubmissionID { return newID[SubmissionID]() }

// NewCommentID returns a random comment id.
func NewCommentID() CommentID { return newID[CommentID]() }

// NewReplyID returns a random reply id.
func NewReplyID() ReplyID { return newID[ReplyID]() }

// ParseSubmissionID validates a caller supplied submission id.
func ParseSubmissionID(s string) (SubmissionID, error) { return parseID[SubmissionID](s) }

// ParseCommentID validates a caller supplied comment id.
func ParseCommentID(s string) (CommentID, error) { return parseID[CommentID](s) }

// ParseReplyID validates a caller supplied reply id.
func ParseReplyID(s string) (ReplyID, error) { return parseID[ReplyID](s) }

func newID[T ~string]() T {
	return T(uuid.NewString())
}

func parseID[T ~string](s string) (T, error) {
	if s == "" {
		var zero T
		return zero, fmt.Errorf("%w (%T)", ErrEmptyID, zero)
	}
	if strings.Contains(s, keys.Separator) {
		var zero T
		return zero, fmt.Errorf("%w: id %q contains %q", keys.ErrInvalidAttribute, s, keys.Separator)
	}
	return T(s), nil
}
