package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/config"
	"github.com/mrlokans/tasktracker/internal/database"
	"github.com/mrlokans/tasktracker/internal/database/users"
)

// CreateUserCommand registers an account directly against the database,
// going through the same validation and hashing as POST /auth/register.
type CreateUserCommand struct {
	Email        string
	Password     string
	DatabasePath string
	BcryptCost   int

	out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	cfg := config.NewConfig()
	fs.StringVar(&cmd.Email, "email", "", "Email address of the new user (required)")
	fs.StringVar(&cmd.Password, "password", "", fmt.Sprintf("Password of the new user, %d to %d characters (required)", auth.MinPasswordLength, auth.MaxPasswordLength))
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "cost", cfg.Auth.BcryptCost, "bcrypt work factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -email jane@example.com -password hunter22\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return errors.New("email and password are required")
	}
	if err := auth.ValidateCredentialsInput(cmd.Email, cmd.Password); err != nil {
		return err
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Tokens are never issued here, so the issuer only needs a throwaway key.
	secret, err := auth.GenerateSecret()
	if err != nil {
		return err
	}
	issuer, err := auth.NewTokenIssuer([]byte(secret), 0)
	if err != nil {
		return err
	}

	service := auth.NewService(users.NewRepository(db.DB), auth.NewHasher(cmd.BcryptCost), issuer)
	user, err := service.Register(cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created user %d <%s>\n", user.ID, user.Email)
	return nil
}
