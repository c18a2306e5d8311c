package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arjunkota/capcol/logx"
)

// ClientConfig bundles the connection and namespacing settings every
// subcommand needs to open a rdriver.Driver.
type ClientConfig struct {
	RedisAddr string
	RedisDB   int
	Prefix    string
	LogLevel  logx.Level
}

// initConfig loads .env and .env.local (if present) into the process
// environment and wires viper to read CAPCOL_-prefixed environment
// variables as flag fallbacks, the same convention the teacher's CLI uses.
func initConfig() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	viper.SetEnvPrefix("CAPCOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds cmd's local flags into viper so CAPCOL_<FLAG> env
// vars and a future config file can satisfy them without the caller
// passing the flag explicitly.
func bindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// getClientConfig reads the persistent connection flags, falling back to
// viper (and therefore CAPCOL_ environment variables) for any flag the
// caller did not set explicitly.
func getClientConfig(cmd *cobra.Command) (ClientConfig, error) {
	if err := bindCommandFlags(cmd.Root()); err != nil {
		return ClientConfig{}, fmt.Errorf("bind flags: %w", err)
	}

	addr := viper.GetString("redis-addr")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	prefix := viper.GetString("prefix")
	if prefix == "" {
		prefix = "capcol"
	}

	return ClientConfig{
		RedisAddr: addr,
		RedisDB:   viper.GetInt("redis-db"),
		Prefix:    prefix,
		LogLevel:  logx.ParseLevel(viper.GetString("log-level")),
	}, nil
}
