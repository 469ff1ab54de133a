// Package cli implements the valnk command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jacentio/valnk/store"
)

var (
	version = "dev"
	commit  = "unknown"
)

// app holds the flags and the store shared by every subcommand.
type app struct {
	table    string
	profile  string
	region   string
	endpoint string
	verbose  bool

	// client, when set, is used instead of one built from the AWS config.
	client store.DynamoDBAPI
	store  *store.Store
	out    io.Writer
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCode(err))
	}
}

// NewRootCmd builds the valnk command tree. A nil client is replaced by a
// DynamoDB client built from the AWS shared config.
func NewRootCmd(client store.DynamoDBAPI) *cobra.Command {
	a := &app{client: client}

	root := &cobra.Command{
		Use:   "valnk",
		Short: "Submissions, comments and replies on DynamoDB",
		Long: `valnk stores link submissions, their comments and replies in a single
DynamoDB table and lists them through paginated index queries.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.table, "table", envOr("VALNK_TABLE", store.DefaultConfig().TableName), "DynamoDB table name")
	flags.StringVar(&a.profile, "profile", os.Getenv("AWS_PROFILE"), "AWS shared config profile")
	flags.StringVar(&a.region, "region", "", "AWS region (default from the profile)")
	flags.StringVar(&a.endpoint, "endpoint", os.Getenv("VALNK_ENDPOINT"), "DynamoDB endpoint, e.g. for DynamoDB Local")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.initTableCmd(),
		a.submitCmd(),
		a.commentCmd(),
		a.replyCmd(),
		a.getCmd(),
		a.listCmd(),
		a.deleteCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.client == nil {
		client, err := a.newClient(cmd.Context())
		if err != nil {
			return err
		}
		a.client = client
	}
	a.store = store.New(a.client, store.Config{
		TableName: a.table,
		Logger:    logger,
	})
	return nil
}

func (a *app) newClient(ctx context.Context) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if a.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(a.profile))
	}
	if a.region != "" {
		opts = append(opts, config.WithRegion(a.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if a.endpoint != "" {
			o.BaseEndpoint = aws.String(a.endpoint)
		}
	}), nil
}

// print writes v as indented JSON.
func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ExitCode maps an error to the process exit status: 2 for caller errors,
// 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, store.ErrBadRequest),
		errors.Is(err, store.ErrInvalidInputData),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAlreadyExists):
		return 2
	}
	return 1
}
