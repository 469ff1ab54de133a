package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jacentio/valnk/model"
	"github.com/jacentio/valnk/store"
)

// tableAdmin is the part of the DynamoDB client needed to provision the table.
type tableAdmin interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

func (a *app) initTableCmd() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "init-table",
		Short: "Create the content table with its indexes, stream and TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, ok := a.client.(tableAdmin)
			if !ok {
				return errors.New("client cannot create tables")
			}
			ctx := cmd.Context()

			if _, err := admin.CreateTable(ctx, store.TableSchema(a.table)); err != nil {
				return fmt.Errorf("create table %s: %w", a.table, err)
			}
			waiter := dynamodb.NewTableExistsWaiter(admin)
			if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(a.table),
			}, wait); err != nil {
				return fmt.Errorf("wait for table %s: %w", a.table, err)
			}
			if _, err := admin.UpdateTimeToLive(ctx, store.TimeToLive(a.table)); err != nil {
				return fmt.Errorf("enable ttl on %s: %w", a.table, err)
			}
			fmt.Fprintf(a.out, "table %s is active\n", a.table)
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Minute, "how long to wait for the table to become active")
	return cmd
}

func (a *app) submitCmd() *cobra.Command {
	var (
		author, topic, title, url, text string
		score                           int64
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create a submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := model.NewSubmissionBuilder().
				WithAuthorID(author).
				WithTopic(topic).
				WithRankingScore(score).
				WithTitle(title).
				WithURL(url).
				WithText(text).
				Build()
			if err != nil {
				return fmt.Errorf("%w: %w", store.ErrInvalidInputData, err)
			}
			if err := a.store.Create(cmd.Context(), sub); err != nil {
				return err
			}
			return a.print(sub)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&author, "author", "", "author id")
	flags.StringVar(&topic, "topic", "", "topic the submission is listed under")
	flags.StringVar(&title, "title", "", "title")
	flags.StringVar(&url, "url", "", "link")
	flags.StringVar(&text, "text", "", "body text")
	flags.Int64Var(&score, "score", 0, "ranking score")
	for _, name := range []string{"author", "topic", "title"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	var (
		submission, author, text string
		score                    int64
	)
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Comment on a submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := model.NewCommentBuilder().
				WithSubmissionID(model.SubmissionID(submission)).
				WithAuthorID(author).
				WithRankingScore(score).
				WithText(text).
				Build()
			if err != nil {
				return fmt.Errorf("%w: %w", store.ErrInvalidInputData, err)
			}
			if err := a.store.Create(cmd.Context(), c); err != nil {
				return err
			}
			return a.print(c)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&submission, "submission", "", "submission id")
	flags.StringVar(&author, "author", "", "author id")
	flags.StringVar(&text, "text", "", "comment text")
	flags.Int64Var(&score, "score", 0, "ranking score")
	for _, name := range []string{"submission", "author", "text"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) replyCmd() *cobra.Command {
	var submission, comment, author, text string
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Reply to a comment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := model.NewReplyBuilder().
				WithSubmissionID(model.SubmissionID(submission)).
				WithCommentID(model.CommentID(comment)).
				WithAuthorID(author).
				WithText(text).
				Build()
			if err != nil {
				return fmt.Errorf("%w: %w", store.ErrInvalidInputData, err)
			}
			if err := a.store.Create(cmd.Context(), r); err != nil {
				return err
			}
			return a.print(r)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&submission, "submission", "", "submission id")
	flags.StringVar(&comment, "comment", "", "comment id")
	flags.StringVar(&author, "author", "", "author id")
	flags.StringVar(&text, "text", "", "reply text")
	for _, name := range []string{"submission", "comment", "author", "text"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "delete <submission|comment|reply> <id>",
		Short:     "Delete a record; its children expire through the stream handler",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(cmd.Context(), model.EntityType(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s %s\n", args[0], args[1])
			return nil
		},
	}
}

var entityKinds = []string{
	string(model.TypeSubmission),
	string(model.TypeComment),
	string(model.TypeReply),
}
