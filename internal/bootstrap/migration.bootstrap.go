package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"path"

	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/util"
	"github.com/krobus00/stocknotifier-service/migration"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func StartMigrate(cmd *cobra.Command, args []string) {
	databaseName, _ := cmd.Flags().GetString("databaseName")
	actionType, _ := cmd.Flags().GetString("action")
	migrationName, _ := cmd.Flags().GetString("name")
	version, _ := cmd.Flags().GetInt64("version")

	// embedded path; "create" writes next to it in the source tree
	migrationDir := path.Join("postgresql", databaseName)

	dbConfig, ok := config.Env.Database[databaseName]
	if !ok {
		util.ContinueOrFatal(fmt.Errorf("database %q is not configured", databaseName))
	}

	db, err := sql.Open("postgres", dbConfig.DSN)
	util.ContinueOrFatal(err)
	defer db.Close()

	err = goose.SetDialect("postgres")
	util.ContinueOrFatal(err)
	goose.SetBaseFS(migration.FS)

	switch actionType {
	case "create":
		goose.SetBaseFS(nil)
		err = goose.Create(db, path.Join("migration", migrationDir), migrationName, "sql")
	case "up":
		err = goose.Up(db, migrationDir, goose.WithAllowMissing())
	case "up-by-one":
		err = goose.UpByOne(db, migrationDir, goose.WithAllowMissing())
	case "up-to":
		err = goose.UpTo(db, migrationDir, version, goose.WithAllowMissing())
	case "down":
		err = goose.Down(db, migrationDir, goose.WithAllowMissing())
	case "down-to":
		err = goose.DownTo(db, migrationDir, version, goose.WithAllowMissing())
	case "status":
		err = goose.Status(db, migrationDir)
	case "reset":
		err = goose.Reset(db, migrationDir, goose.WithAllowMissing())
		if err != nil {
			break
		}
		err = goose.Up(db, migrationDir, goose.WithAllowMissing())
	default:
		err = errors.New("invalid command")
	}

	util.ContinueOrFatal(err)
}
