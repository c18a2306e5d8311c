package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/arjunkota/capcol/logx"
	"github.com/arjunkota/capcol/rdriver"
)

// newServeCmd returns the admin HTTP server: a health check backed by
// Driver.ConfigOK and a Prometheus-format metrics endpoint, for operators
// running capcol as a sidecar rather than invoking it one command at a
// time.
func newServeCmd() *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP server exposing /healthz and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := openDriver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			log := logx.Default("serve")
			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", healthzHandler(d))
			mux.Handle("/metrics", d.MetricsHandler())

			log.Infof("listening on %s", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	c.Flags().StringVar(&addr, "addr", ":8085", "address to listen on")
	return c
}

func healthzHandler(d *rdriver.Driver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "ping failed: %v\n", err)
			return
		}
		if err := d.ConfigOK(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "config check failed: %v\n", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}
}
