package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flocklens/flocklens/internal/observability"
	"github.com/flocklens/flocklens/internal/output"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage stored API credentials",
	Long: `Manage the credential pool the scheduler rotates through. Tokens
and secrets are stored locally and never printed back.`,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		records, err := db.ListCredentials(ctx)
		if err != nil {
			return err
		}

		return render(records, func() string { return output.FormatCredentials(records) })
	},
}

var keysAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := strings.TrimSpace(args[0])

		token, err := cmd.Flags().GetString("token")
		if err != nil {
			return err
		}
		secret, err := cmd.Flags().GetString("secret")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		rec, err := db.AddCredential(ctx, label, token, secret)
		if err != nil {
			return err
		}

		observability.CLILogger.Info("Credential added",
			zap.Int64("id", rec.ID),
			zap.String("label", rec.Label))
		return nil
	},
}

var keysRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := strings.TrimSpace(args[0])

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.RemoveCredential(ctx, label); err != nil {
			return err
		}

		observability.CLILogger.Info("Credential removed", zap.String("label", label))
		return nil
	},
}

// credentialImport mirrors one entry of the YAML import file.
type credentialImport struct {
	Label  string `yaml:"label"`
	Token  string `yaml:"token"`
	Secret string `yaml:"secret"`
}

type credentialImportFile struct {
	Credentials []credentialImport `yaml:"credentials"`
}

var keysImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import credentials from a YAML file",
	Long: `Import credentials from a YAML file of the form:

credentials:
  - label: primary
    token: <token>
    secret: <secret>

Entries whose label already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeysImport,
}

func runKeysImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var file credentialImportFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}
	if len(file.Credentials) == 0 {
		return fmt.Errorf("import file contains no credentials")
	}

	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	existing, err := db.ListCredentials(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, rec := range existing {
		known[rec.Label] = true
	}

	added := 0
	for _, entry := range file.Credentials {
		label := strings.TrimSpace(entry.Label)
		if known[label] {
			observability.CLILogger.Warn("Skipping credential with existing label",
				zap.String("label", label))
			continue
		}
		if _, err := db.AddCredential(ctx, label, entry.Token, entry.Secret); err != nil {
			return fmt.Errorf("import credential %q: %w", label, err)
		}
		known[label] = true
		added++
	}

	observability.CLILogger.Info("Credentials imported",
		zap.Int("added", added),
		zap.Int("skipped", len(file.Credentials)-added))
	return nil
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysAddCmd)
	keysCmd.AddCommand(keysRemoveCmd)
	keysCmd.AddCommand(keysImportCmd)

	keysAddCmd.Flags().String("token", "", "API token")
	keysAddCmd.Flags().String("secret", "", "API token secret")
	_ = keysAddCmd.MarkFlagRequired("token")
	_ = keysAddCmd.MarkFlagRequired("secret")
}
