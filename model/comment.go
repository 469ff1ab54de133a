package model

import (
	"errors"
	"time"

	"github.com/jacentio/valnk/internal/keys"
)

// Comment is a top-level response to a submission.
type Comment struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1_PK"` // SUBMS#submission
	GSI1SK string `dynamodbav:"GSI1_SK"` // COMMT#score
	GSI2PK string `dynamodbav:"GSI2_PK"` // AUTHR#author
	GSI2SK string `dynamodbav:"GSI2_SK"` // COMMT#created

	Type EntityType `dynamodbav:"entity_type"`

	ID           CommentID    `dynamodbav:"id"`
	SubmissionID SubmissionID `dynamodbav:"submission_id"`
	AuthorID     string       `dynamodbav:"author_id"`
	RankingScore int64        `dynamodbav:"ranking_score"`
	Text         string       `dynamodbav:"text"`
	NLikes       uint64       `dynamodbav:"n_likes"`
	NReplies     uint64       `dynamodbav:"n_replies"`
	CreatedAt    time.Time    `dynamodbav:"created_at"`
	UpdatedAt    time.Time    `dynamodbav:"updated_at"`
}

// EntityType implements Record.
func (c *Comment) EntityType() EntityType { return TypeComment }

// PrimaryKey implements Record.
func (c *Comment) PrimaryKey() keys.PrimaryKey {
	return keys.PrimaryKey{Partition: c.PK, Sort: c.SK}
}

// SubmissionKey returns the stored by-submission index key.
func (c *Comment) SubmissionKey() keys.IndexKey {
	return keys.IndexKey{Partition: c.GSI1PK, Sort: c.GSI1SK}
}

// AuthorKey returns the stored by-author index key.
func (c *Comment) AuthorKey() keys.IndexKey {
	return keys.IndexKey{Partition: c.GSI2PK, Sort: c.GSI2SK}
}

// VerifyKeys implements Record.
func (c *Comment) VerifyKeys() error {
	pk, bySubmission, byAuthor, err := commentKeys(c.ID, c.SubmissionID, c.RankingScore, c.AuthorID, c.CreatedAt)
	if err != nil {
		return err
	}
	return errors.Join(
		compareKey("PK", c.PK, pk.Partition),
		compareKey("SK", c.SK, pk.Sort),
		compareKey("GSI1_PK", c.GSI1PK, bySubmission.Partition),
		compareKey("GSI1_SK", c.GSI1SK, bySubmission.Sort),
		compareKey("GSI2_PK", c.GSI2PK, byAuthor.Partition),
		compareKey("GSI2_SK", c.GSI2SK, byAuthor.Sort),
	)
}

func commentKeys(id CommentID, submissionID SubmissionID, score int64, authorID string, createdAt time.Time) (pk keys.PrimaryKey, bySubmission, byAuthor keys.IndexKey, err error) {
	if pk, err = keys.Primary(keys.Comment, string(id)); err != nil {
		return
	}
	if bySubmission, err = keys.Secondary(keys.Comment, keys.Submission, string(submissionID), score); err != nil {
		return
	}
	byAuthor, err = keys.Secondary(keys.Comment, keys.Author, authorID, unixOrdinal(createdAt))
	return
}

// CommentBuilder collects comment attributes; Build validates them and derives
// the keys.
type CommentBuilder struct {
	id           *CommentID
	submissionID *SubmissionID
	authorID     *string
	rankingScore *int64
	text         *string
	nLikes       uint64
	nReplies     uint64
	createdAt    *time.Time
	updatedAt    *time.Time
}

// NewCommentBuilder returns an empty builder.
func NewCommentBuilder() *CommentBuilder {
	return &CommentBuilder{}
}

// WithID sets an explicit id. It must not contain the key separator; a random id is used when unset.
func (b *CommentBuilder) WithID(id CommentID) *CommentBuilder {
	b.id = &id
	return b
}

// WithSubmissionID sets the parent submission.
func (b *CommentBuilder) WithSubmissionID(id SubmissionID) *CommentBuilder {
	b.submissionID = &id
	return b
}

// WithAuthorID sets the author.
func (b *CommentBuilder) WithAuthorID(authorID string) *CommentBuilder {
	b.authorID = &authorID
	return b
}

// WithRankingScore sets the score that orders the record in its parent listing. It must be in [0, keys.MaxOrdinal].
func (b *CommentBuilder) WithRankingScore(score int64) *CommentBuilder {
	b.rankingScore = &score
	return b
}

// WithText sets the body text.
func (b *CommentBuilder) WithText(text string) *CommentBuilder {
	b.text = &text
	return b
}

// WithNLikes sets the like counter.
func (b *CommentBuilder) WithNLikes(n uint64) *CommentBuilder {
	b.nLikes = n
	return b
}

// WithNReplies sets the reply counter.
func (b *CommentBuilder) WithNReplies(n uint64) *CommentBuilder {
	b.nReplies = n
	return b
}

// WithCreatedAt sets the creation time, which orders the record in author listings.
func (b *CommentBuilder) WithCreatedAt(t time.Time) *CommentBuilder {
	b.createdAt = &t
	return b
}

// WithUpdatedAt sets the last update time.
func (b *CommentBuilder) WithUpdatedAt(t time.Time) *CommentBuilder {
	b.updatedAt = &t
	return b
}

// Build validates the collected attributes and returns the finished record.
func (b *CommentBuilder) Build() (*Comment, error) {
	var missing fields
	missing.require("submission_id", b.submissionID != nil)
	missing.require("author_id", b.authorID != nil)
	missing.require("ranking_score", b.rankingScore != nil)
	missing.require("text", b.text != nil)
	if len(missing) > 0 {
		return nil, &BuildError{Entity: TypeComment, Missing: missing}
	}

	id := NewCommentID()
	if b.id != nil {
		var err error
		if id, err = ParseCommentID(string(*b.id)); err != nil {
			return nil, &BuildError{Entity: TypeComment, Err: err}
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

	pk, bySubmission, byAuthor, err := commentKeys(id, *b.submissionID, *b.rankingScore, *b.authorID, createdAt)
	if err != nil {
		return nil, &BuildError{Entity: TypeComment, Err: err}
	}

	return &Comment{
		PK:           pk.Partition,
		SK:           pk.Sort,
		GSI1PK:       bySubmission.Partition,
		GSI1SK:       bySubmission.Sort,
		GSI2PK:       byAuthor.Partition,
		GSI2SK:       byAuthor.Sort,
		Type:         TypeComment,
		ID:           id,
		SubmissionID: *b.submissionID,
		AuthorID:     *b.authorID,
		RankingScore: *b.rankingScore,
		Text:         *b.text,
		NLikes:       b.nLikes,
		NReplies:     b.nReplies,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Rebuild returns a builder seeded with every attribute of c.
func (c *Comment) Rebuild() *CommentBuilder {
	return NewCommentBuilder().
		WithID(c.ID).
		WithSubmissionID(c.SubmissionID).
		WithAuthorID(c.AuthorID).
		WithRankingScore(c.RankingScore).
		WithText(c.Text).
		WithNLikes(c.NLikes).
		WithNReplies(c.NReplies).
		WithCreatedAt(c.CreatedAt).
		WithUpdatedAt(c.UpdatedAt)
}
