package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bobmcallan/marketplay/internal/app"
	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/bobmcallan/marketplay/internal/storage"
	"github.com/google/subcommands"
)

// opener connects to the configured storage backend.
type opener func(ctx context.Context) (interfaces.StorageManager, error)

func openStorage(ctx context.Context, configPath string) (interfaces.StorageManager, error) {
	config, err := app.ResolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := common.NewLoggerFromConfig(config.Logging)
	return storage.NewStorageManager(ctx, logger, config)
}

func commands(open opener, out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&migrateCmd{open: open, out: out},
		&addUserCmd{open: open, out: out},
		&listUsersCmd{open: open, out: out},
	}
}

type migrateCmd struct {
	open opener
	out  io.Writer
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the storage schema" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies the schema of the configured storage backend. Safe to run repeatedly.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sm, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer sm.Close()

	if err := sm.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error migrating %s: %v\n", sm.Backend(), err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.out, "%s schema is up to date\n", sm.Backend())
	return subcommands.ExitSuccess
}

type addUserCmd struct {
	open  opener
	out   io.Writer
	uid   string
	email string
	phone string
}

func (*addUserCmd) Name() string     { return "add-user" }
func (*addUserCmd) Synopsis() string { return "register a user by identity provider subject" }
func (*addUserCmd) Usage() string {
	return `add-user -uid <subject> [-email <email>] [-phone <phone>]

  Registers a user so that requests authenticated as <subject> can manage a portfolio.
  For local development use -uid test_user_123.
`
}

func (c *addUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.uid, "uid", "", "identity provider subject (required)")
	f.StringVar(&c.email, "email", "", "contact email")
	f.StringVar(&c.phone, "phone", "", "contact phone number")
}

func (c *addUserCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	uid := strings.TrimSpace(c.uid)
	if uid == "" {
		fmt.Fprintln(os.Stderr, "Error: -uid is required.")
		return subcommands.ExitUsageError
	}

	sm, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer sm.Close()

	user, err := sm.UserStore().CreateUser(ctx, &models.User{
		FirebaseUID: uid,
		Email:       strings.TrimSpace(c.email),
		Phone:       strings.TrimSpace(c.phone),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding user: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.out, "added user %d (%s)\n", user.ID, user.FirebaseUID)
	return subcommands.ExitSuccess
}

type listUsersCmd struct {
	open opener
	out  io.Writer
}

func (*listUsersCmd) Name() string     { return "list-users" }
func (*listUsersCmd) Synopsis() string { return "list registered users" }
func (*listUsersCmd) Usage() string {
	return `list-users

  Prints every registered user ordered by id.
`
}
func (*listUsersCmd) SetFlags(*flag.FlagSet) {}

func (c *listUsersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sm, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer sm.Close()

	users, err := sm.UserStore().ListUsers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tEMAIL\tPHONE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.FirebaseUID, u.Email, u.Phone, u.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
	return subcommands.ExitSuccess
}
