package model

import (
	"errors"
	"time"

	"github.com/jacentio/valnk/internal/keys"
)

// Submission is a link or text post grouped under a topic.
type Submission struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1_PK"` // TOPIC#topic
	GSI1SK string `dynamodbav:"GSI1_SK"` // SUBMS#score
	GSI2PK string `dynamodbav:"GSI2_PK"` // AUTHR#author
	GSI2SK string `dynamodbav:"GSI2_SK"` // SUBMS#created

	Type EntityType `dynamodbav:"entity_type"`

	ID           SubmissionID `dynamodbav:"id"`
	AuthorID     string       `dynamodbav:"author_id"`
	Topic        string       `dynamodbav:"topic"`
	RankingScore int64        `dynamodbav:"ranking_score"`
	Title        string       `dynamodbav:"title"`
	URL          string       `dynamodbav:"url"`
	Text         string       `dynamodbav:"text"`
	NVotes       uint64       `dynamodbav:"n_votes"`
	NComments    uint64       `dynamodbav:"n_comments"`
	CreatedAt    time.Time    `dynamodbav:"created_at"`
	UpdatedAt    time.Time    `dynamodbav:"updated_at"`
}

// EntityType implements Record.
func (s *Submission) EntityType() EntityType { return TypeSubmission }

// PrimaryKey implements Record.
func (s *Submission) PrimaryKey() keys.PrimaryKey {
	return keys.PrimaryKey{Partition: s.PK, Sort: s.SK}
}

// TopicKey returns the stored by-topic index key.
func (s *Submission) TopicKey() keys.IndexKey {
	return keys.IndexKey{Partition: s.GSI1PK, Sort: s.GSI1SK}
}

// AuthorKey returns the stored by-author index key.
func (s *Submission) AuthorKey() keys.IndexKey {
	return keys.IndexKey{Partition: s.GSI2PK, Sort: s.GSI2SK}
}

// VerifyKeys implements Record.
func (s *Submission) VerifyKeys() error {
	pk, byTopic, byAuthor, err := submissionKeys(s.ID, s.Topic, s.RankingScore, s.AuthorID, s.CreatedAt)
	if err != nil {
		return err
	}
	return errors.Join(
		compareKey("PK", s.PK, pk.Partition),
		compareKey("SK", s.SK, pk.Sort),
		compareKey("GSI1_PK", s.GSI1PK, byTopic.Partition),
		compareKey("GSI1_SK", s.GSI1SK, byTopic.Sort),
		compareKey("GSI2_PK", s.GSI2PK, byAuthor.Partition),
		compareKey("GSI2_SK", s.GSI2SK, byAuthor.Sort),
	)
}

func submissionKeys(id SubmissionID, topic string, score int64, authorID string, createdAt time.Time) (pk keys.PrimaryKey, byTopic, byAuthor keys.IndexKey, err error) {
	if pk, err = keys.Primary(keys.Submission, string(id)); err != nil {
		return
	}
	if byTopic, err = keys.Secondary(keys.Submission, keys.Topic, topic, score); err != nil {
		return
	}
	byAuthor, err = keys.Secondary(keys.Submission, keys.Author, authorID, unixOrdinal(createdAt))
	return
}

// SubmissionBuilder collects submission attributes; Build validates them and
// derives the keys.
type SubmissionBuilder struct {
	id           *SubmissionID
	authorID     *string
	topic        *string
	rankingScore *int64
	title        *string
	url          *string
	text         *string
	nVotes       uint64
	nComments    uint64
	createdAt    *time.Time
	updatedAt    *time.Time
}

// NewSubmissionBuilder returns an empty builder.
func NewSubmissionBuilder() *SubmissionBuilder {
	return &SubmissionBuilder{}
}

// WithID sets an explicit id. It must not contain the key separator; a random id is used when unset.
func (b *SubmissionBuilder) WithID(id SubmissionID) *SubmissionBuilder {
	b.id = &id
	return b
}

// WithAuthorID sets the author.
func (b *SubmissionBuilder) WithAuthorID(authorID string) *SubmissionBuilder {
	b.authorID = &authorID
	return b
}

// WithTopic sets the topic the submission is listed under.
func (b *SubmissionBuilder) WithTopic(topic string) *SubmissionBuilder {
	b.topic = &topic
	return b
}

// WithRankingScore sets the score that orders the record in its parent listing. It must be in [0, keys.MaxOrdinal].
func (b *SubmissionBuilder) WithRankingScore(score int64) *SubmissionBuilder {
	b.rankingScore = &score
	return b
}

// WithTitle sets the title.
func (b *SubmissionBuilder) WithTitle(title string) *SubmissionBuilder {
	b.title = &title
	return b
}

// WithURL sets the link.
func (b *SubmissionBuilder) WithURL(url string) *SubmissionBuilder {
	b.url = &url
	return b
}

// WithText sets the body text.
func (b *SubmissionBuilder) WithText(text string) *SubmissionBuilder {
	b.text = &text
	return b
}

// WithNVotes sets the vote counter.
func (b *SubmissionBuilder) WithNVotes(n uint64) *SubmissionBuilder {
	b.nVotes = n
	return b
}

// WithNComments sets the comment counter.
func (b *SubmissionBuilder) WithNComments(n uint64) *SubmissionBuilder {
	b.nComments = n
	return b
}

// WithCreatedAt sets the creation time, which orders the record in author listings.
func (b *SubmissionBuilder) WithCreatedAt(t time.Time) *SubmissionBuilder {
	b.createdAt = &t
	return b
}

// WithUpdatedAt sets the last update time.
func (b *SubmissionBuilder) WithUpdatedAt(t time.Time) *SubmissionBuilder {
	b.updatedAt = &t
	return b
}

// Build validates the collected attributes and returns the finished record.
// The id defaults to a random one and timestamps default to now.
func (b *SubmissionBuilder) Build() (*Submission, error) {
	var missing fields
	missing.require("author_id", b.authorID != nil)
	missing.require("topic", b.topic != nil)
	missing.require("ranking_score", b.rankingScore != nil)
	missing.require("title", b.title != nil)
	missing.require("url", b.url != nil)
	missing.require("text", b.text != nil)
	if len(missing) > 0 {
		return nil, &BuildError{Entity: TypeSubmission, Missing: missing}
	}

	id := NewSubmissionID()
	if b.id != nil {
		var err error
		if id, err = ParseSubmissionID(string(*b.id)); err != nil {
			return nil, &BuildError{Entity: TypeSubmission, Err: err}
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

	pk, byTopic, byAuthor, err := submissionKeys(id, *b.topic, *b.rankingScore, *b.authorID, createdAt)
	if err != nil {
		return nil, &BuildError{Entity: TypeSubmission, Err: err}
	}

	return &Submission{
		PK:           pk.Partition,
		SK:           pk.Sort,
		GSI1PK:       byTopic.Partition,
		GSI1SK:       byTopic.Sort,
		GSI2PK:       byAuthor.Partition,
		GSI2SK:       byAuthor.Sort,
		Type:         TypeSubmission,
		ID:           id,
		AuthorID:     *b.authorID,
		Topic:        *b.topic,
		RankingScore: *b.rankingScore,
		Title:        *b.title,
		URL:          *b.url,
		Text:         *b.text,
		NVotes:       b.nVotes,
		NComments:    b.nComments,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Rebuild returns a builder seeded with every attribute of s, for producing a
// replacement record with freshly derived keys.
func (s *Submission) Rebuild() *SubmissionBuilder {
	return NewSubmissionBuilder().
		WithID(s.ID).
		WithAuthorID(s.AuthorID).
		WithTopic(s.Topic).
		WithRankingScore(s.RankingScore).
		WithTitle(s.Title).
		WithURL(s.URL).
		WithText(s.Text).
		WithNVotes(s.NVotes).
		WithNComments(s.NComments).
		WithCreatedAt(s.CreatedAt).
		WithUpdatedAt(s.UpdatedAt)
}
