// Command cinemactl performs administrative tasks against the cinema
// database.  The only subcommand creates an ADMIN account, which the
// HTTP API cannot do without an existing admin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/iliyamo/cinema-admin/internal/config"
	"github.com/iliyamo/cinema-admin/internal/database"
	"github.com/iliyamo/cinema-admin/internal/middleware"
	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/repository"
	"github.com/iliyamo/cinema-admin/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage()
		return nil
	}
	switch args[0] {
	case "create-admin":
		return createAdmin(args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: cinemactl <command> [flags]

Commands:
  create-admin   create an ADMIN user (prompts for the password)

Run "cinemactl <command> --help" for the flags of a command.
`)
}

func createAdmin(args []string) error {
	var email, name, phone, passwordFile, configPath, envFile string
	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "e-mail address of the new admin (required)")
	flagSet.StringVar(&name, "name", "", "display name (required)")
	flagSet.StringVar(&phone, "phone", "", "phone number")
	flagSet.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
	flagSet.StringVar(&configPath, "config", os.Getenv("CINEMA_CONFIG"), "YAML file with default environment values")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" || name == "" {
		return errors.New("--email and --name are required")
	}

	password, err := readPassword(passwordFile)
	if err != nil {
		return err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	if configPath != "" {
		if err := config.LoadFile(configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	u := &model.User{Name: name, Email: email, Role: model.RoleAdmin}
	if phone = strings.TrimSpace(phone); phone != "" {
		u.Phone = &phone
	}
	accounts := &service.AuthService{Users: repository.NewUserRepo(db), BcryptCost: cfg.BcryptCost}
	// The server caches /users and /dashboard; drop those entries.
	if rdb := config.NewRedisClient(config.LoadRedisConfig()); rdb != nil {
		defer rdb.Close()
		accounts.Cache = middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := accounts.CreateUser(ctx, u, password); err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", u.Email, u.ID)
	return nil
}

// readPassword prompts twice with echo disabled, or reads passwordFile
// when given.  Trailing newlines of the file are stripped.
func readPassword(passwordFile string) (string, error) {
	if passwordFile != "" {
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", err
		}
		pw := strings.TrimRight(string(data), "\r\n")
		if pw == "" {
			return "", fmt.Errorf("%s is empty", passwordFile)
		}
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for the password prompt (use --password-file)")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("empty password")
	}
	return string(first), nil
}
