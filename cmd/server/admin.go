package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/inkwell/internal/config"
	"github.com/and161185/inkwell/internal/crypto"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository/postgres"
	"github.com/and161185/inkwell/internal/service"
	"github.com/and161185/inkwell/internal/token"
)

var superAdmin model.Registration

var createSuperAdminCmd = &cobra.Command{
	Use:   "create-super-admin",
	Short: "Create an active super_admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(cfg *config.Config, db *postgres.DB) error {
			codec, err := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
			if err != nil {
				return err
			}
			store := service.NewRefreshTokenStore(postgres.NewRefreshTokenRepo(db), cfg.RefreshTokenTTL, nil)
			auth := service.NewAuthService(postgres.NewUserRepo(db), crypto.NewHasher(cfg.BcryptCost), codec, store, nil, nil)
			u, err := auth.CreateSuperAdmin(cmd.Context(), superAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created super_admin %s (id %d)\n", u.Username, u.ID)
			return nil
		})
	},
}

var purgeTokensCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Delete expired refresh tokens once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(cfg *config.Config, db *postgres.DB) error {
			store := service.NewRefreshTokenStore(postgres.NewRefreshTokenRepo(db), cfg.RefreshTokenTTL, nil)
			n, err := store.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired refresh tokens\n", n)
			return nil
		})
	},
}

func withStore(ctx context.Context, fn func(*config.Config, *postgres.DB) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}

func init() {
	f := createSuperAdminCmd.Flags()
	f.StringVar(&superAdmin.Username, "username", "", "login name")
	f.StringVar(&superAdmin.Email, "email", "", "email address")
	f.StringVar(&superAdmin.Password, "password", "", "initial password")
	_ = createSuperAdminCmd.MarkFlagRequired("username")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createSuperAdminCmd, purgeTokensCmd)
}
