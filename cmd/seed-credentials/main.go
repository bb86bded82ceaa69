package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/database"
	"github.com/classtrack/rollcall-backend/internal/logger"
	"github.com/classtrack/rollcall-backend/internal/model"
	"github.com/classtrack/rollcall-backend/internal/repository"
)

// seed-credentials overwrites the stored credential record for one role, so
// deployments can replace the stock admin/teacher/student passwords.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	credentialRepo := repository.NewCredentialRepository(rdb)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Seed Role Credential ===")

	// Role
	fmt.Print("Enter Role (admin/teacher/student): ")
	roleStr, _ := reader.ReadString('\n')
	role := model.Role(strings.TrimSpace(roleStr))
	if !role.Valid() {
		fmt.Println("Error: Role must be admin, teacher, or student")
		return
	}

	// Username
	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Println("Error: Username is required")
		return
	}

	// Display name
	fmt.Print("Enter Display Name: ")
	displayName, _ := reader.ReadString('\n')
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		fmt.Println("Error: Display Name is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	cred := model.Credential{
		Username:     username,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
	}

	if err := credentialRepo.Put(ctx, role, cred); err != nil {
		log.Fatal().Err(err).Msg("Failed to store credential")
	}

	fmt.Printf("\nSuccess! Credential for role '%s' set to username '%s'\n", role, username)
}
