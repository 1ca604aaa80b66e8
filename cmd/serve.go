package cmd

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/KaramelBytes/eda-cli/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	svIngest ingestFlags
	svAddr   string
	svEnv    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP quality service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadServeConfig()
		if err != nil {
			return err
		}
		ingest, err := svIngest.options()
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:            c.ListenAddr,
			MaxUploadBytes:  c.MaxUploadBytes(),
			MaxConcurrent:   c.MaxConcurrent,
			ShutdownTimeout: time.Duration(c.ShutdownTimeoutSec) * time.Second,
			Ingest:          ingest,
		}, appLog)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

// loadServeConfig loads the optional .env file, then reloads the
// configuration so its EDA_* values apply, including to the logger.
func loadServeConfig() (*cfgpkg.Global, error) {
	// Real environment variables win over .env.
	if err := godotenv.Load(svEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if svAddr != "" {
		c.ListenAddr = svAddr
	}
	applyConfig(c)
	return c, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	svIngest.bind(serveCmd)
	serveCmd.Flags().StringVar(&svAddr, "addr", "", "listen address (default from config: :8000)")
	serveCmd.Flags().StringVar(&svEnv, "env-file", ".env", "dotenv file loaded before the configuration")
}
