package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sheetfeed/internal/app"
	"sheetfeed/internal/config"
	"sheetfeed/internal/core"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if msg := core.UserMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Append").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseProfileID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid profile id %q", arg)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:           "sheetfeed",
	Short:         "Append scanned invoice records into pre-formatted spreadsheets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		installID := uuid.New().String()
		cfg := config.NewConfig(installID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage spreadsheet profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add NAME FILE SHEET",
	Short: "Register a spreadsheet profile and scan it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mappings, _ := cmd.Flags().GetStringSlice("map")
		mapping := make(map[string]string, len(mappings))
		for _, m := range mappings {
			parts := strings.SplitN(m, "=", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return fmt.Errorf("invalid mapping %q (want COLUMN=field)", m)
			}
			mapping[strings.ToUpper(parts[0])] = parts[1]
		}

		a, err := newApp("CreateProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.CreateProfile(context.Background(), args[0], args[1], args[2], mapping)
		if err != nil {
			return err
		}

		fmt.Printf("Profile %d created: %s (%s!%s)\n", p.ID, p.Name, p.ExcelPath, p.SheetName)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListProfiles")
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := a.ListProfiles()
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("No profiles.")
			return nil
		}

		for _, p := range profiles {
			scanned := "never"
			if !p.LastScannedAt.IsZero() {
				scanned = p.LastScannedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%d  %s  %s!%s  scanned:%s\n", p.ID, p.Name, p.ExcelPath, p.SheetName, scanned)
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete PROFILE_ID",
	Short: "Delete a profile and its stored schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("DeleteProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteProfile(id); err != nil {
			return err
		}

		fmt.Printf("Profile %d deleted\n", id)
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan PROFILE_ID",
	Short: "Scan a profile's spreadsheet structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		schema, err := a.Scan(context.Background(), id, force)
		if err != nil {
			return err
		}

		fmt.Printf("Header row:    %d\n", schema.HeaderRow)
		fmt.Printf("Last data row: %d\n", schema.LastDataRow)
		fmt.Printf("Next free row: %d\n", schema.NextFreeRow)
		fmt.Printf("Columns (%d):\n", len(schema.Headers))
		for _, h := range schema.Headers {
			fmt.Printf("  %s  %s\n", h.ColumnLetter, h.Text)
		}
		return nil
	},
}

// append command
var appendCmd = &cobra.Command{
	Use:   "append PROFILE_ID [field=value ...]",
	Short: "Append one record into the next free row",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}

		record := make(core.Record, len(args)-1)
		for _, arg := range args[1:] {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) != 2 || parts[0] == "" {
				return fmt.Errorf("invalid field %q (want field=value)", arg)
			}
			record[parts[0]] = parts[1]
		}

		a, err := newApp("Append")
		if err != nil {
			return err
		}
		defer a.Close()

		row, err := a.Append(context.Background(), id, record)
		if err != nil {
			return err
		}

		fmt.Printf("Appended to row %d\n", row)
		return nil
	},
}

// changes command
var changesCmd = &cobra.Command{
	Use:   "changes PROFILE_ID",
	Short: "View row-pointer change history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Changes")
		if err != nil {
			return err
		}
		defer a.Close()

		changes, err := a.Changes(id, limit)
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			fmt.Println("No changes recorded.")
			return nil
		}

		for _, c := range changes {
			fmt.Printf("%s  %s  %d -> %d\n",
				c.ChangedAt.Format("2006-01-02 15:04:05"),
				c.Reason,
				c.OldNextFreeRow,
				c.NewNextFreeRow,
			)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	profileCmd.AddCommand(profileAddCmd)
	profileAddCmd.Flags().StringSlice("map", nil, "Column mapping COLUMN=field (repeatable)")
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolP("force", "f", false, "Bypass caches and rescan the file")
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().IntP("limit", "n", 50, "Maximum number of changes to show")
}
