package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"renewables/internal/amqp"
	"renewables/internal/services"
	"renewables/internal/storage"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	var (
		file   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the sqlite dataset with a date,state,renewables CSV file",
		Long: "import parses the file, replaces the records in the sqlite database and,\n" +
			"when AMQP_URL is set, announces the new dataset so running servers refresh.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			e, err := root.setup(cmd)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = e.cfg.SQLiteDBPath
			}

			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return fmt.Errorf("open sqlite %s: %w", dbPath, err)
			}
			defer repo.Close()

			var publisher amqp.Publisher
			client, err := DialAMQP(e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			if client != nil {
				defer client.Close()
				publisher = client
			}

			importer := services.NewImporter(repo, publisher, e.logger)
			res, err := importer.ImportFile(cmd.Context(), file, ParseOptions(e.cfg))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d skipped) from %s, years %v\n",
				res.Records, res.Skipped, res.Source, res.Years)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (default: SQLITE_DB_PATH)")

	return cmd
}
