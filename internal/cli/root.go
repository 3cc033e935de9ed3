// Package cli implements the scriptconfig command line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scriptconfig/internal/config"
	"scriptconfig/internal/host"
	"scriptconfig/internal/support"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scriptconfig",
	Short: "Resolve and inspect script compilation configurations",
	Long: `scriptconfig resolves the compiler classpath, SDK and dependency roots of
script files, caches the result per file and reports the aggregated
dependency roots across all configured scripting supports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <script>...",
	Short: "Resolve the configuration of one or more script files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServiceFromFlags()
		if err != nil {
			return err
		}
		defer svc.close()

		ctx := context.Background()
		for _, path := range args {
			file := host.NewLocalFile(path)
			cfg := svc.manager.GetOrLoadConfiguration(ctx, file)
			if cfg == nil {
				fmt.Printf("%s: no configuration\n", path)
				continue
			}
			fmt.Printf("%s:\n", path)
			for _, cp := range cfg.ClassPath {
				fmt.Printf("  classpath %s\n", cp)
			}
			for _, sp := range cfg.SourcePath {
				fmt.Printf("  sources   %s\n", sp)
			}
			if cfg.SDK.IsValid() {
				fmt.Printf("  sdk       %s (%s)\n", cfg.SDK.Name, cfg.SDK.HomePath)
			}
		}
		return nil
	},
}

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Print the aggregated dependency roots of all scripting supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServiceFromFlags()
		if err != nil {
			return err
		}
		defer svc.close()

		out := struct {
			ClassFiles  []string `json:"class_files"`
			SourceFiles []string `json:"source_files"`
		}{
			ClassFiles:  svc.manager.GetAllScriptsDependenciesClassFiles(),
			SourceFiles: svc.manager.GetAllScriptsDependenciesSources(),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <script>...",
	Short: "Show whether cached configurations are up to date",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServiceFromFlags()
		if err != nil {
			return err
		}
		defer svc.close()

		ctx := context.Background()
		for _, path := range args {
			file := host.NewLocalFile(path)
			sup, ok := svc.manager.SupportFor(file)
			if !ok {
				fmt.Printf("%s: unclaimed\n", path)
				continue
			}
			svc.manager.EnsureUpToDate(ctx, file)
			if sup.Roots().Contains(file.URI()) {
				fmt.Printf("%s: applied (support %s)\n", path, sup.Name())
			} else {
				fmt.Printf("%s: pending (support %s)\n", path, sup.Name())
			}
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <models.json>",
	Short: "Import a batch of Gradle script models",
	Long: `import reads a JSON array of resolved Gradle script models and atomically
replaces the Gradle support's configuration set with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServiceFromFlags()
		if err != nil {
			return err
		}
		defer svc.close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read models file: %w", err)
		}
		var models []support.GradleScriptModel
		if err := json.Unmarshal(data, &models); err != nil {
			return fmt.Errorf("failed to parse models file: %w", err)
		}

		svc.gradle.ImportModels(models)
		fmt.Printf("imported %d script models\n", len(models))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServiceFromFlags()
		if err != nil {
			return err
		}
		defer svc.close()

		svc.manager.ProjectRootsChanged()
		fmt.Println("caches cleared")
		return nil
	},
}

func newServiceFromFlags() (*service, error) {
	cfg := config.GetDefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return newService(cfg), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the settings file")
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(rootsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
