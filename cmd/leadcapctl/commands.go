// AngelaMos | 2026
// commands.go

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/leadcap/internal/auth"
	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/user"
)

func migrateCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exits next

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func keygenCmd(env *environment) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the ES256 key pair used to sign sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			privPath := cfg.Session.PrivateKeyPath
			pubPath := cfg.Session.PublicKeyPath

			if !force {
				if _, err := os.Stat(privPath); err == nil {
					return fmt.Errorf(
						"key pair already exists at %s, use --force to replace it",
						privPath,
					)
				}
			}

			if err := auth.GenerateKeyPair(privPath, pubPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privPath, pubPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing key pair")

	return cmd
}

func userCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(userCreateCmd(env))
	cmd.AddCommand(userRoleCmd(env))
	cmd.AddCommand(userStatusCmd(env))

	return cmd
}

func userCreateCmd(env *environment) *cobra.Command {
	var name, role string

	cmd := &cobra.Command{
		Use:   "create [email]",
		Short: "Create an account, typically the first admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := userService(cmd, env)
			if err != nil {
				return err
			}
			defer closeFn()

			if name == "" {
				name = args[0]
			}

			u, err := svc.CreateUser(cmd.Context(), name, args[0], role)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%d\n", u.Email, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name (defaults to the email)")
	cmd.Flags().StringVarP(&role, "role", "r", user.RoleUser, "user or admin")

	return cmd
}

func userRoleCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "role [email] [user|admin]",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := userService(cmd, env)
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.GetUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}

			u, err = svc.UpdateUserRole(cmd.Context(), u.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return nil
		},
	}
}

func userStatusCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "status [email] [active|flagged|blocked]",
		Short: "Change an account's moderation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := userService(cmd, env)
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.GetUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}

			u, err = svc.SetStatus(cmd.Context(), u.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Status)
			return nil
		},
	}
}

func otpCmd(env *environment) *cobra.Command {
	var olderThan time.Duration

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete one-time codes that expired before the cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exits next

			svc := auth.NewService(auth.ServiceConfig{
				Repo: auth.NewRepository(db.DB),
			})

			n, err := svc.PruneExpiredCodes(cmd.Context(), olderThan)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired codes\n", n)
			return nil
		},
	}

	prune.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "minimum age past expiry")

	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Maintain one-time login codes",
	}
	cmd.AddCommand(prune)

	return cmd
}

func userService(
	cmd *cobra.Command,
	env *environment,
) (*user.Service, func(), error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := env.database(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	ids, err := core.NewIDGenerator(cfg.App.NodeID)
	if err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on setup failure
		return nil, nil, err
	}

	closeFn := func() {
		_ = db.Close() //nolint:errcheck // process exits next
	}

	return user.NewService(user.NewRepository(db.DB), ids), closeFn, nil
}
