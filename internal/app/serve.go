package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noteports/noteports/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "listen address")
	serveCmd.Flags().IntP("port", "p", 7577, "web port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	// Re-bind so the invoked command's own flags win over the root's.
	viper.BindPFlag("host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("port", cmd.Flags().Lookup("port"))

	logger := newLogger()
	mon, err := newMonitor(logger)
	if err != nil {
		return err
	}

	srv := server.New(mon, logger)
	addr := net.JoinHostPort(viper.GetString("host"), strconv.Itoa(viper.GetInt("port")))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(addr) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	}
}
