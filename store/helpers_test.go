package store_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jacentio/valnk/internal/ddbtest"
	"github.com/jacentio/valnk/model"
	"github.com/jacentio/valnk/store"
)

var baseTime = time.Unix(1_700_000_000, 0).UTC()

func newTestStore(t *testing.T) (*store.Store, *ddbtest.Fake) {
	t.Helper()
	fake := ddbtest.New()
	s := store.New(fake, store.Config{
		TableName: "test-content",
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return s, fake
}

func mustCreate(t *testing.T, s *store.Store, rec model.Record) {
	t.Helper()
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("create %s: %v", rec.EntityType(), err)
	}
}

func newSubmission(t *testing.T, topic, author string, score int64) *model.Submission {
	t.Helper()
	sub, err := model.NewSubmissionBuilder().
		WithAuthorID(author).
		WithTopic(topic).
		WithRankingScore(score).
		WithTitle(fmt.Sprintf("story %d", score)).
		WithURL("https://example.com").
		WithText("").
		WithCreatedAt(baseTime.Add(time.Duration(score) * time.Second)).
		Build()
	if err != nil {
		t.Fatalf("build submission: %v", err)
	}
	return sub
}

func newComment(t *testing.T, sub model.SubmissionID, author string, score int64) *model.Comment {
	t.Helper()
	c, err := model.NewCommentBuilder().
		WithSubmissionID(sub).
		WithAuthorID(author).
		WithRankingScore(score).
		WithText(fmt.Sprintf("comment %d", score)).
		WithCreatedAt(baseTime.Add(time.Duration(score) * time.Second)).
		Build()
	if err != nil {
		t.Fatalf("build comment: %v", err)
	}
	return c
}

func newReply(t *testing.T, sub model.SubmissionID, comment model.CommentID, author string, offset int) *model.Reply {
	t.Helper()
	r, err := model.NewReplyBuilder().
		WithSubmissionID(sub).
		WithCommentID(comment).
		WithAuthorID(author).
		WithText(fmt.Sprintf("reply %d", offset)).
		WithCreatedAt(baseTime.Add(time.Duration(offset) * time.Second)).
		Build()
	if err != nil {
		t.Fatalf("build reply: %v", err)
	}
	return r
}

func submissionScores(items []model.Submission) []int64 {
	scores := make([]int64, len(items))
	for i, s := range items {
		scores[i] = s.RankingScore
	}
	return scores
}
