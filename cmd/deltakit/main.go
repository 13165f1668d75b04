package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		renderError(err)
		os.Exit(exitCode(err))
	}
}

// renderError writes the failure to stderr: one kind-prefixed line with a
// remediation hint where one is known, or a structured error body when
// --json is set.
func renderError(err error) {
	var de *deltaerr.Error
	if !errors.As(err, &de) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if jsonFlag, _ := rootCmd.PersistentFlags().GetBool("json"); jsonFlag {
		body := struct {
			Error struct {
				Kind    string         `json:"kind"`
				Message string         `json:"message"`
				Context map[string]any `json:"context,omitempty"`
			} `json:"error"`
		}{}
		body.Error.Kind = string(de.Kind)
		body.Error.Message = de.Message
		body.Error.Context = de.Context
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(body)
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", de)
	if hint := remediationHint(de); hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
}

func remediationHint(de *deltaerr.Error) string {
	switch de.Kind {
	case deltaerr.Infeasible:
		return "retry with larger --shards or relaxed --max-files-per-shard/--max-bytes-per-shard"
	case deltaerr.MissingStatistics:
		return "retry with --balance bytes"
	case deltaerr.VersionNotFound:
		return "omit --version to read the latest version"
	default:
		return ""
	}
}

// exitCode follows the documented mapping for typed errors; anything else
// escaping Execute is a usage error (unknown command, bad flag).
func exitCode(err error) int {
	var de *deltaerr.Error
	if errors.As(err, &de) {
		return deltaerr.ExitCode(err)
	}
	return 2
}

var rootCmd = &cobra.Command{
	Use:   "deltakit",
	Short: "Deltakit - read-only inspection and planning for Delta Lake tables",
	Long: `Deltakit reconstructs Delta Lake table state from its transaction log
and plans deterministic file-to-shard assignments for downstream query
engines, without ever mutating the table it reads.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("deltakit version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress human-readable logs")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache commit and checkpoint reads in this directory across invocations")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(shardManifestCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rowcountCmd)
	rootCmd.AddCommand(vacuumDryRunCmd)
	rootCmd.AddCommand(partitionHealthCmd)
	rootCmd.AddCommand(compactPlanCmd)
}

func initLogging() {
	quiet, _ := rootCmd.PersistentFlags().GetBool("quiet")
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	if quiet {
		logLevel = "error"
	}
	// Logs go to stderr so command payloads on stdout stay parseable.
	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
		Output:     os.Stderr,
	})
}
