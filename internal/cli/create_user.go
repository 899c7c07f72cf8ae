package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/mealsnap/internal/db"
	"github.com/terraincognita07/mealsnap/internal/services"
)

// RunCreateUserCommand creates an account for email, reading the password
// twice from in.
func RunCreateUserCommand(dbPath string, email string, in *os.File, out io.Writer) error {
	if services.NormalizeAuthEmail(email) == "" {
		return errors.New("a valid email is required")
	}

	password, err := promptPassword(in, out, "Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirmation, err := promptPassword(in, out, "Repeat password: ")
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}
	if password != confirmation {
		return errors.New("passwords do not match")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	authService := services.NewAuthService(db.NewUserRepository(database), nil, nil)
	user, err := authService.Register(email, password)
	switch {
	case errors.Is(err, services.ErrWeakPassword):
		return fmt.Errorf("password rejected: %w", err)
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		return fmt.Errorf("user %s already exists", services.NormalizeAuthEmail(email))
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "Created user %s (id %d)\n", user.Email, user.ID)
	return nil
}
