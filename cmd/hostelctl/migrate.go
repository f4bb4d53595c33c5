package main

import (
	"github.com/spf13/cobra"

	mysqlrepo "hostel_hub/internal/storage/mysql"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations to MYSQL_DSN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMySQL(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return mysqlrepo.Migrate(cmd.Context(), db)
	},
}
