package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/adna-tk/book-explorer/internal/stubapi"
)

func demoAPICmd(a *app) *cobra.Command {
	var addr string
	var rotate bool

	cmd := &cobra.Command{
		Use:   "demo-api",
		Short: "Serve the in-memory demo backend",
		Long:  "Runs the seeded in-memory backend so the client can be used offline. Sign in with john.doe@mail.com / JohnDoe123.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stub := stubapi.New(stubapi.Config{
				RotateRefresh: rotate,
				Logger:        a.log.With().Str("component", "stubapi").Logger(),
			})

			// Mounted under /api to match the client's default base URL.
			mux := http.NewServeMux()
			mux.Handle("/api/", http.StripPrefix("/api", stub))

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Msg("demo API listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().BoolVar(&rotate, "rotate-refresh", false, "rotate the refresh token on every refresh")
	return cmd
}
