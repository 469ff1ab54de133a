package cli

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/jacentio/valnk/model"
	"github.com/jacentio/valnk/store"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <submission|comment|reply> <id>",
		Short:     "Print one record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.store.Get(cmd.Context(), model.EntityType(args[0]), args[1])
			if err != nil {
				return err
			}
			return a.print(rec)
		},
	}
}

// paging binds the pagination flags shared by the list subcommands.
type paging struct {
	limit   int32
	reverse bool
	cursor  string
}

func (p *paging) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int32Var(&p.limit, "limit", 0, "page size (default from the store config)")
	flags.BoolVar(&p.reverse, "reverse", false, "list in descending order")
	flags.StringVar(&p.cursor, "cursor", "", "resume after the page that returned this cursor")
}

func (p *paging) options(cmd *cobra.Command) store.ListOptions {
	opts := store.ListOptions{Reverse: p.reverse}
	if cmd.Flags().Changed("limit") {
		opts.Limit = aws.Int32(p.limit)
	}
	if p.cursor != "" {
		opts.StartCursor = aws.String(p.cursor)
	}
	return opts
}

// pageView is the printed form of one page.
type pageView[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func printPage[T any](a *app, page *store.Page[T], err error) error {
	if err != nil {
		return err
	}
	return a.print(pageView[T]{Items: page.Items, NextCursor: page.NextCursor})
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records through the secondary indexes",
	}
	cmd.AddCommand(
		a.listTopicCmd(),
		a.listAuthorCmd(),
		a.listCommentsCmd(),
		a.listRepliesCmd(),
		a.listThreadCmd(),
	)
	return cmd
}

func (a *app) listTopicCmd() *cobra.Command {
	var p paging
	cmd := &cobra.Command{
		Use:   "topic <topic>",
		Short: "List a topic's submissions by ranking score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.store.ListSubmissionsByTopic(cmd.Context(), args[0], p.options(cmd))
			return printPage(a, page, err)
		},
	}
	p.register(cmd)
	return cmd
}

func (a *app) listAuthorCmd() *cobra.Command {
	var (
		p    paging
		kind string
	)
	cmd := &cobra.Command{
		Use:   "author <author>",
		Short: "List an author's records of one kind by creation time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, opts := cmd.Context(), p.options(cmd)
			switch model.EntityType(kind) {
			case model.TypeSubmission:
				page, err := a.store.ListSubmissionsByAuthor(ctx, args[0], opts)
				return printPage(a, page, err)
			case model.TypeComment:
				page, err := a.store.ListCommentsByAuthor(ctx, args[0], opts)
				return printPage(a, page, err)
			case model.TypeReply:
				page, err := a.store.ListRepliesByAuthor(ctx, args[0], opts)
				return printPage(a, page, err)
			}
			return fmt.Errorf("%w: unknown kind %q", store.ErrBadRequest, kind)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&kind, "kind", string(model.TypeSubmission), "submission, comment or reply")
	return cmd
}

func (a *app) listCommentsCmd() *cobra.Command {
	var p paging
	cmd := &cobra.Command{
		Use:   "comments <submission-id>",
		Short: "List a submission's comments by ranking score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.store.ListCommentsBySubmission(cmd.Context(), model.SubmissionID(args[0]), p.options(cmd))
			return printPage(a, page, err)
		},
	}
	p.register(cmd)
	return cmd
}

func (a *app) listRepliesCmd() *cobra.Command {
	var (
		p       paging
		comment string
	)
	cmd := &cobra.Command{
		Use:   "replies <submission-id>",
		Short: "List a submission's replies, or one comment's with --comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := model.SubmissionID(args[0])
			if comment != "" {
				page, err := a.store.ListRepliesByComment(cmd.Context(), sub, model.CommentID(comment), p.options(cmd))
				return printPage(a, page, err)
			}
			page, err := a.store.ListRepliesBySubmission(cmd.Context(), sub, p.options(cmd))
			return printPage(a, page, err)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&comment, "comment", "", "only replies to this comment")
	return cmd
}

func (a *app) listThreadCmd() *cobra.Command {
	var p paging
	cmd := &cobra.Command{
		Use:   "thread <submission-id>",
		Short: "List a submission's comments followed by its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.store.ListThread(cmd.Context(), model.SubmissionID(args[0]), p.options(cmd))
			return printPage(a, page, err)
		},
	}
	p.register(cmd)
	return cmd
}
