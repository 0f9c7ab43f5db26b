package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pmsworkflow/pms-api/internal/config"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/database"
	"github.com/pmsworkflow/pms-api/internal/logging"
	"github.com/pmsworkflow/pms-api/internal/mail"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/server"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/spf13/cobra"
)

const adminRoleName = "admin"

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Server.GinMode)

		db, err := database.Open(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close(db)

		return database.Migrate(db, logger)
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create an all-permission role and its first user",
	Long: `Create the "admin" role holding every permission, if missing, and a
user assigned to it. Users can otherwise only be created by a caller
that already holds add_user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" || adminEmail == "" || len(adminPassword) < constants.MinPasswordLength {
			return fmt.Errorf("--username, --email and a --password of at least %d characters are required",
				constants.MinPasswordLength)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Server.GinMode)

		db, err := database.Open(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		svc := server.NewServices(db, cfg, mail.New(cfg.Mail, logger), logger)
		user, err := seedAdmin(cmd.Context(), svc, adminUsername, adminEmail, adminPassword)
		if err != nil {
			return err
		}

		fmt.Printf("Created admin user %s (%s)\n", user.Username, user.UserID)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
}

func seedAdmin(ctx context.Context, svc *server.Services, username, email, password string) (*models.User, error) {
	var roleID string
	if existing := svc.Roles.CustomQuery(ctx, "name = ?", adminRoleName); len(existing) > 0 {
		roleID = existing[0].RoleID
	} else {
		res := svc.Roles.CreateRole(ctx, &models.Role{
			Name:        adminRoleName,
			Description: "Full access to every resource",
			Permissions: strings.Join(constants.AllPermissions(), ","),
		})
		if !res.OK() {
			return nil, fmt.Errorf("failed to create admin role: %s", res.Message)
		}
		roleID = res.Data.RoleID
	}

	res := svc.Users.CreateUser(ctx, services.CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		RoleID:   roleID,
	})
	if !res.OK() {
		return nil, errors.New("failed to create admin user: " + res.Message)
	}
	return res.Data, nil
}
