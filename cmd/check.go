package main

import (
	"context"
	"fmt"
	"os"

	"github.com/glefebvre/catalog-console/internal/catalog"
	"github.com/glefebvre/catalog-console/internal/config"
	"github.com/glefebvre/catalog-console/internal/database"
	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the database, the state backend and the catalog API",
	Long: `Check that the console can reach everything it depends on.

With --username and --password (or CATALOG_USERNAME / CATALOG_PASSWORD) the
command also logs in to the catalog API and verifies the issued token with
the auth-check endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" {
			username = os.Getenv("CATALOG_USERNAME")
		}
		if password == "" {
			password = os.Getenv("CATALOG_PASSWORD")
		}

		cfg := config.Get()
		failed := false
		report := func(name string, err error) {
			if err != nil {
				failed = true
				fmt.Printf("✗ %-10s %s\n", name, errors.UserMessage(err))
				return
			}
			fmt.Printf("✓ %-10s ok\n", name)
		}

		fmt.Println("=== Console Check ===")

		err := database.Initialize()
		if err == nil {
			err = database.HealthCheck()
		}
		report("database", err)
		if err == nil {
			defer database.Close()

			backend, err := openStateBackend(cfg)
			if err == nil {
				if backend.close != nil {
					defer backend.close()
				}
				err = backend.health()
			}
			report("state", err)
		}

		if username == "" || password == "" {
			fmt.Printf("- %-10s skipped (no credentials)\n", "catalog")
		} else {
			report("catalog", checkCatalog(cmd.Context(), cfg, username, password))
		}

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

func checkCatalog(ctx context.Context, cfg *config.Config, username, password string) error {
	client := catalog.New(cfg.CatalogClient())

	token, err := client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	status, err := client.WithToken(token).AuthCheck(ctx)
	if err != nil {
		return err
	}
	if !status.Authenticated {
		return errors.UnauthorizedError("Token was issued but not accepted")
	}
	return nil
}

func init() {
	checkCmd.Flags().String("username", "", "catalog operator username")
	checkCmd.Flags().String("password", "", "catalog operator password")
}
