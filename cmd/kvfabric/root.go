package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:     "kvfabric",
	Short:   "Sharded in-memory key-value server over a userspace dispatch fabric",
	Long:    "kvfabric runs a network worker that accepts client connections and dispatches framed requests across a pool of store workers over lock-free shared channels. Flags can also be set as environment variables prefixed KVFABRIC_ (e.g. KVFABRIC_PORT=9000).",
	PreRunE: bindFlags,
	RunE:    runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.String("ip", "127.0.0.1", "address to listen on")
	flags.Int("port", 12345, "port to listen on")
	flags.String("cmd-file", "", "initial seed command file")
	flags.String("log-dir", "./", "directory for the latency log")
	flags.IntP("workers", "w", 1, "number of store workers")
	flags.BoolP("record-lat", "r", false, "record per-request latency to <log-dir>/net_traces")
	flags.StringP("choice", "c", "RR", "dispatch policy: RR, KEY, or HASH")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	rootCmd.AddCommand(clientCmd)
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// initConfig loads .env files and wires viper's environment fallback.
// Matches the env-prefix convention KVFABRIC_<FLAG> (hyphens become
// underscores).
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("kvfabric")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
