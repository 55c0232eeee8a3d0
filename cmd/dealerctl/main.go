package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/config"
	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

const usage = `Usage: dealerctl <command> [flags]

Commands:
  create-public-tenant   ensure the public tenant and its tables exist
  create-tenant          provision a dealership schema with its domain
  create-tenant-user     create a user inside a tenant partition

Run 'dealerctl <command> -h' for command flags.
`

type ctlConfig struct {
	Logger logger.Config
	PG     pg.Config
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	var cfg ctlConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewFromConfig(cfg.Logger)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("run shared migrations: %w", err)
	}

	store := storage.NewStore(pool)
	provisioner := storage.NewProvisioner(store, cfg.PG, log)

	switch command {
	case "create-public-tenant":
		return createPublicTenant(ctx, provisioner, store, args)
	case "create-tenant":
		return createTenant(ctx, provisioner, args)
	case "create-tenant-user":
		return createTenantUser(ctx, store, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func createPublicTenant(ctx context.Context, provisioner *storage.Provisioner, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("create-public-tenant", flag.ExitOnError)
	name := fs.String("name", "Platform", "display name for the public tenant")
	adminUsername := fs.String("admin-username", "", "platform admin username to create (optional)")
	adminPassword := fs.String("admin-password", "", "platform admin password")
	adminEmail := fs.String("admin-email", "", "platform admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := provisioner.EnsurePublicTenant(ctx, *name); err != nil {
		return fmt.Errorf("ensure public tenant: %w", err)
	}
	fmt.Printf("public tenant %q ready\n", *name)

	if *adminUsername == "" {
		return nil
	}
	return createUser(ctx, store, tenant.PublicSchema, *adminUsername, *adminEmail, *adminPassword, true)
}

func createTenant(ctx context.Context, provisioner *storage.Provisioner, args []string) error {
	fs := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	schema := fs.String("schema", "", "schema id, e.g. northside")
	name := fs.String("name", "", "dealership display name")
	domain := fs.String("domain", "", "primary hostname, e.g. northside.dealerdesk.app")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schema == "" || *name == "" {
		return fmt.Errorf("create-tenant: -schema and -name are required")
	}

	t, err := provisioner.CreateTenant(ctx, *schema, *name, *domain)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	fmt.Printf("tenant %s (%s) provisioned\n", t.SchemaID, t.Name)
	return nil
}

func createTenantUser(ctx context.Context, store *storage.Store, args []string) error {
	fs := flag.NewFlagSet("create-tenant-user", flag.ExitOnError)
	schema := fs.String("schema", "", "tenant schema id")
	username := fs.String("username", "", "username, unique within the tenant")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "initial password")
	admin := fs.Bool("admin", false, "grant tenant admin rights")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schema == "" || *username == "" || *password == "" {
		return fmt.Errorf("create-tenant-user: -schema, -username and -password are required")
	}

	return createUser(ctx, store, *schema, *username, *email, *password, *admin)
}

func createUser(ctx context.Context, store *storage.Store, schema, username, email, password string, admin bool) error {
	t, err := store.GetBySchema(ctx, schema)
	if err != nil {
		return fmt.Errorf("look up tenant %q: %w", schema, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &storage.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
		IsActive:     true,
		TenantSchema: t.SchemaID,
	}
	err = store.RunInTenant(ctx, t, func(ctx context.Context) error {
		return store.CreateUser(ctx, user)
	})
	if err != nil {
		return fmt.Errorf("create user %q in %s: %w", username, schema, err)
	}

	fmt.Printf("user %s created in %s (id %s)\n", user.Username, t.SchemaID, user.ID)
	return nil
}
