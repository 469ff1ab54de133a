package model

import (
	"errors"
	"time"

	"github.com/jacentio/valnk/internal/keys"
)

// Reply answers a comment. It is indexed under its submission, clustered by
// comment, so one partition holds a submission's whole discussion.
type Reply struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1_PK"` // SUBMS#submission
	GSI1SK string `dynamodbav:"GSI1_SK"` // REPLY#comment#created
	GSI2PK string `dynamodbav:"GSI2_PK"` // AUTHR#author
	GSI2SK string `dynamodbav:"GSI2_SK"` // REPLY#created

	Type EntityType `dynamodbav:"entity_type"`

	ID           ReplyID      `dynamodbav:"id"`
	SubmissionID SubmissionID `dynamodbav:"submission_id"`
	CommentID    CommentID    `dynamodbav:"comment_id"`
	AuthorID     string       `dynamodbav:"author_id"`
	Text         string       `dynamodbav:"text"`
	NLikes       uint64       `dynamodbav:"n_likes"`
	CreatedAt    time.Time    `dynamodbav:"created_at"`
	UpdatedAt    time.Time    `dynamodbav:"updated_at"`
}

// EntityType implements Record.
func (r *Reply) EntityType() EntityType { return TypeReply }

// PrimaryKey implements Record.
func (r *Reply) PrimaryKey() keys.PrimaryKey {
	return keys.PrimaryKey{Partition: r.PK, Sort: r.SK}
}

// SubmissionKey returns the stored by-submission index key.
func (r *Reply) SubmissionKey() keys.IndexKey {
	return keys.IndexKey{Partition: r.GSI1PK, Sort: r.GSI1SK}
}

// AuthorKey returns the stored by-author index key.
func (r *Reply) AuthorKey() keys.IndexKey {
	return keys.IndexKey{Partition: r.GSI2PK, Sort: r.GSI2SK}
}

// VerifyKeys implements Record.
func (r *Reply) VerifyKeys() error {
	pk, bySubmission, byAuthor, err := replyKeys(r.ID, r.SubmissionID, r.CommentID, r.AuthorID, r.CreatedAt)
	if err != nil {
		return err
	}
	return errors.Join(
		compareKey("PK", r.PK, pk.Partition),
		compareKey("SK", r.SK, pk.Sort),
		compareKey("GSI1_PK", r.GSI1PK, bySubmission.Partition),
		compareKey("GSI1_SK", r.GSI1SK, bySubmission.Sort),
		compareKey("GSI2_PK", r.GSI2PK, byAuthor.Partition),
		compareKey("GSI2_SK", r.GSI2SK, byAuthor.Sort),
	)
}

func replyKeys(id ReplyID, submissionID SubmissionID, commentID CommentID, authorID string, createdAt time.Time) (pk keys.PrimaryKey, bySubmission, byAuthor keys.IndexKey, err error) {
	if pk, err = keys.Primary(keys.Reply, string(id)); err != nil {
		return
	}
	created := unixOrdinal(createdAt)
	if bySubmission, err = keys.Nested(keys.Reply, keys.Submission, string(submissionID), string(commentID), created); err != nil {
		return
	}
	byAuthor, err = keys.Secondary(keys.Reply, keys.Author, authorID, created)
	return
}

// ReplyBuilder collects reply attributes; Build validates them and derives the keys.
type ReplyBuilder struct {
	id           *ReplyID
	submissionID *SubmissionID
	commentID    *CommentID
	authorID     *string
	text         *string
	nLikes       uint64
	createdAt    *time.Time
	updatedAt    *time.Time
}

// NewReplyBuilder returns an empty builder.
func NewReplyBuilder() *ReplyBuilder {
	return &ReplyBuilder{}
}

// WithID sets an explicit id. It must not contain the key separator; a random id is used when unset.
func (b *ReplyBuilder) WithID(id ReplyID) *ReplyBuilder {
	b.id = &id
	return b
}

// WithSubmissionID sets the parent submission.
func (b *ReplyBuilder) WithSubmissionID(id SubmissionID) *ReplyBuilder {
	b.submissionID = &id
	return b
}

// WithCommentID sets the comment being replied to.
func (b *ReplyBuilder) WithCommentID(id CommentID) *ReplyBuilder {
	b.commentID = &id
	return b
}

// WithAuthorID sets the author.
func (b *ReplyBuilder) WithAuthorID(authorID string) *ReplyBuilder {
	b.authorID = &authorID
	return b
}

// WithText sets the body text.
func (b *ReplyBuilder) WithText(text string) *ReplyBuilder {
	b.text = &text
	return b
}

// WithNLikes sets the like counter.
func (b *ReplyBuilder) WithNLikes(n uint64) *ReplyBuilder {
	b.nLikes = n
	return b
}

// WithCreatedAt sets the creation time, which orders the record in author listings.
func (b *ReplyBuilder) WithCreatedAt(t time.Time) *ReplyBuilder {
	b.createdAt = &t
	return b
}

// WithUpdatedAt sets the last update time.
func (b *ReplyBuilder) WithUpdatedAt(t time.Time) *ReplyBuilder {
	b.updatedAt = &t
	return b
}

// Build validates the collected attributes and returns the finished record.
func (b *ReplyBuilder) Build() (*Reply, error) {
	var missing fields
	missing.require("submission_id", b.submissionID != nil)
	missing.require("comment_id", b.commentID != nil)
	missing.require("author_id", b.authorID != nil)
	missing.require("text", b.text != nil)
	if len(missing) > 0 {
		return nil, &BuildError{Entity: TypeReply, Missing: missing}
	}

	id := NewReplyID()
	if b.id != nil {
		var err error
		if id, err = ParseReplyID(string(*b.id)); err != nil {
			return nil, &BuildError{Entity: TypeReply, Err: err}
		}
	}
	current := now().UTC()
	createdAt, updatedAt := current, current
	if b.createdAt != nil {
		createdAt = b.createdAt.UTC()
	}
	if b.updatedAt != nil {
		updatedAt = b.updatedAt.UTC()
	}

	pk, bySubmission, byAuthor, err := replyKeys(id, *b.submissionID, *b.commentID, *b.authorID, createdAt)
	if err != nil {
		return nil, &BuildError{Entity: TypeReply, Err: err}
	}

	return &Reply{
		PK:           pk.Partition,
		SK:           pk.Sort,
		GSI1PK:       bySubmission.Partition,
		GSI1SK:       bySubmission.Sort,
		GSI2PK:       byAuthor.Partition,
		GSI2SK:       byAuthor.Sort,
		Type:         TypeReply,
		ID:           id,
		SubmissionID: *b.submissionID,
		CommentID:    *b.commentID,
		AuthorID:     *b.authorID,
		Text:         *b.text,
		NLikes:       b.nLikes,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Rebuild returns a builder seeded with every attribute of r.
func (r *Reply) Rebuild() *ReplyBuilder {
	return NewReplyBuilder().
		WithID(r.ID).
		WithSubmissionID(r.SubmissionID).
		WithCommentID(r.CommentID).
		WithAuthorID(r.AuthorID).
		WithText(r.Text).
		WithNLikes(r.NLikes).
		WithCreatedAt(r.CreatedAt).
		WithUpdatedAt(r.UpdatedAt)
}
