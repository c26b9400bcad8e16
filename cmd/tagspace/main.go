package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tagspace/internal/app"
	"tagspace/internal/config"
	"tagspace/internal/tagspace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a TagspaceApp. The caller must defer a.Close().
// operation names the CLI command being run (e.g. "UpdateIndex", "SetTags").
func newApp(ctx context.Context, operation string) (*app.TagspaceApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.NewTagspaceApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and reports its error unless the command already failed.
func closeApp(a *app.TagspaceApp, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:          "tagspace",
	Short:        "Tag files across source directories",
	SilenceUsage: true,
}

// defaultListLimit caps recursive listings unless --limit says otherwise.
const defaultListLimit = 1000

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List indexed entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		filter, _ := cmd.Flags().GetString("filter")
		recursive, _ := cmd.Flags().GetBool("recursive")
		limit, _ := cmd.Flags().GetInt("limit")
		color, _ := cmd.Flags().GetBool("color")

		ctx := cmd.Context()
		a, err := newApp(ctx, "ListFiles")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		entries, err := a.ListFiles(ctx, path, filter, recursive, limit)
		if err != nil {
			return err
		}
		renderer, err := a.TagRenderer(ctx, color)
		if err != nil {
			return err
		}

		for _, e := range entries {
			kind, size := "f", humanize.IBytes(uint64(e.Size))
			if e.IsDir {
				kind, size = "d", "-"
			}
			line := fmt.Sprintf("%8d  %s  %9s  %s", e.ID, kind, size, e.VirtualPath())
			if len(e.Tags) > 0 {
				line += "  " + renderer.RenderAll(e.Tags)
			}
			for _, cat := range slices.Sorted(maps.Keys(e.Groups)) {
				line += fmt.Sprintf("  ~%s=%s", cat, strings.Join(e.Groups[cat], ","))
			}
			fmt.Println(line)
		}
		return nil
	},
}

// sum command
var sumCmd = &cobra.Command{
	Use:   "sum FILE...",
	Short: "Print the content checksum of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Checksum")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		for _, file := range args {
			digest, err := a.Checksum(ctx, file)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", digest, file)
		}
		return nil
	},
}

// tag commands
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Edit entry tags",
}

var tagSetCmd = &cobra.Command{
	Use:   "set ID [TAG...]",
	Short: "Replace an entry's tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "SetTags")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.SetTags(ctx, id, args[1:])
	},
}

var tagChangeCmd = &cobra.Command{
	Use:   "change ID",
	Short: "Add and remove entry tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		adds, _ := cmd.Flags().GetStringSlice("add")
		removes, _ := cmd.Flags().GetStringSlice("remove")
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "ChangeTags")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.ChangeTags(ctx, id, adds, removes)
	},
}

// path command
var pathCmd = &cobra.Command{
	Use:   "path VPATH",
	Short: "Print the real path of a virtual path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Translate")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		realPath, err := a.Translate(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(realPath)
		return nil
	},
}

// source commands
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage source directories",
}

var sourceReplaceCmd = &cobra.Command{
	Use:   "replace FILE",
	Short: "Replace all sources with the name|path lines in FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading sources file: %w", err)
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "ReplaceSources")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.ReplaceSources(ctx, strings.Split(string(data), "\n"))
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListSources")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		sources, err := a.ListSources(ctx)
		if err != nil {
			return err
		}
		for _, s := range sources {
			fmt.Printf("%s|%s\n", s.Name, s.Path)
		}
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile the index with the sources on disk",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		full, _ := cmd.Flags().GetBool("full")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cmd.Context()
		a, err := newApp(ctx, "UpdateIndex")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var progress tagspace.Progress
		if !quiet {
			progress = newProgressPrinter(os.Stderr)
		}
		stats, err := a.UpdateIndex(ctx, full, progress)
		if stats != nil {
			fmt.Printf("observed %s, unchanged %s, moved %s, copied %s, created %s, hashed %s, failed %s, deleted %s\n",
				humanize.Comma(stats.Observed),
				humanize.Comma(stats.Unchanged),
				humanize.Comma(stats.Moved),
				humanize.Comma(stats.Copied),
				humanize.Comma(stats.Created),
				humanize.Comma(stats.Hashed),
				humanize.Comma(stats.Failed),
				humanize.Comma(stats.Deleted))
		}
		return err
	},
}

// mv command
var mvCmd = &cobra.Command{
	Use:   "mv ID NEWPATH [NEWNAME]",
	Short: "Move an entry within the index",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		newName := ""
		if len(args) == 3 {
			newName = args[2]
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "MoveEntry")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		e, err := a.MoveEntry(ctx, id, args[1], newName)
		if err != nil {
			return err
		}
		fmt.Printf("%d -> %s\n", e.ID, e.VirtualPath())
		return nil
	},
}

func formatDuration(start time.Time, end time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return end.Sub(start).Truncate(time.Millisecond).String()
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		a, err := newApp(ctx, "GetHistory")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		ops, err := a.GetHistory(ctx, limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			fmt.Printf("#%d  %-15s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				formatDuration(op.StartedAt, op.FinishedAt.Time, op.FinishedAt.Valid),
				op.Parameters,
			)
		}
		return nil
	},
}

// scans command
var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "View scan pass history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		a, err := newApp(ctx, "GetScanPasses")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		passes, err := a.GetScanPasses(ctx, limit)
		if err != nil {
			return err
		}
		if len(passes) == 0 {
			fmt.Println("No scan passes recorded.")
			return nil
		}

		for _, p := range passes {
			kind := "quick"
			if p.FullScan {
				kind = "full"
			}
			fmt.Printf("#%d  %s  %-5s  %-9s  %-10s  seen %d, moved %d, copied %d, new %d, hashed %d, failed %d, deleted %d\n",
				p.ID,
				p.StartedAt.Local().Format("2006-01-02 15:04:05"),
				kind,
				p.Status,
				formatDuration(p.StartedAt, p.FinishedAt.Time, p.FinishedAt.Valid),
				p.Observed, p.Moved, p.Copied, p.Created, p.Hashed, p.FailedEntries, p.Deleted,
			)
		}
		return nil
	},
}

// snapshot commands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy the index to and from the vault",
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the index to the vault now",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SnapshotPush")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		version, err := a.PushSnapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded snapshot version %d\n", version)
		return nil
	},
}

var snapshotPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local index with the vault's snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if cfg.Snapshot.Encrypt {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := app.RestoreSnapshot(cmd.Context(), cfg, passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot version %d\n", version)
		return nil
	},
}

// config commands
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
			return fmt.Errorf("getting defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return err
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID:  %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Host ID:   %s\n", cfg.HostID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Snapshots: enabled=%t encrypt=%t\n", cfg.Snapshot.Enabled, cfg.Snapshot.Encrypt)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:     %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var configKeysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.InitKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

func init() {
	// ls
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().StringP("filter", "f", "", "Filter expression")
	lsCmd.Flags().BoolP("recursive", "r", false, "List entries below PATH as well")
	lsCmd.Flags().IntP("limit", "l", defaultListLimit, "Maximum number of entries in a recursive listing, 0 for no limit")
	lsCmd.Flags().BoolP("color", "c", false, "Color tags")

	// tag subcommands
	tagCmd.AddCommand(tagSetCmd)
	tagCmd.AddCommand(tagChangeCmd)
	tagChangeCmd.Flags().StringSliceP("add", "a", nil, "Tags to add")
	tagChangeCmd.Flags().StringSliceP("remove", "r", nil, "Tags to remove")
	rootCmd.AddCommand(tagCmd)

	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(sumCmd)

	// source subcommands
	sourceCmd.AddCommand(sourceReplaceCmd)
	sourceCmd.AddCommand(sourceListCmd)
	rootCmd.AddCommand(sourceCmd)

	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().Bool("full", false, "Hash every file")
	updateCmd.Flags().BoolP("quiet", "q", false, "Do not show progress")

	rootCmd.AddCommand(mvCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(scansCmd)
	scansCmd.Flags().IntP("limit", "n", 20, "Maximum number of scan passes to show")

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotPushCmd)
	snapshotCmd.AddCommand(snapshotPullCmd)
	rootCmd.AddCommand(snapshotCmd)

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configKeysCmd.AddCommand(configKeysInitCmd)
	rootCmd.AddCommand(configCmd)
}
