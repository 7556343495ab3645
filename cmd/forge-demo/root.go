package main

import (
	"fmt"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgewebtools/forge-server/app"
	"github.com/forgewebtools/forge-server/config"
	"github.com/forgewebtools/forge-server/core/http"
)

var (
	configPath string
	port       int
	docRoot    string
	indexOf    bool
	logFile    string
	workers    int
)

// NewRootCmd creates the demo command: a small site exercising route
// registration, query and post parameters, shared handler state, and the
// static-file fallback.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forge-demo",
		Short: "Demo application for the forge server engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				cfg = config.LoadOrDefault(configPath)
			}
			applyFlags(cmd, cfg)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			registerRoutes(a)

			banner := color.New(color.FgGreen, color.Bold)
			banner.Printf("forge-demo listening on %s:%d\n", cfg.Host, cfg.Port)
			if cfg.DocumentRoot != "" {
				fmt.Printf("serving files from %s (index-of: %v)\n", cfg.DocumentRoot, cfg.IndexOf)
			}

			return a.Run()
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "listening port")
	rootCmd.Flags().StringVarP(&docRoot, "root", "r", "", "document root for static files")
	rootCmd.Flags().BoolVar(&indexOf, "index-of", false, "enable directory listings")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "path to the log file")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size")

	return rootCmd
}

// applyFlags overrides file/default configuration with flags that were set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("root") {
		cfg.DocumentRoot = docRoot
	}
	if cmd.Flags().Changed("index-of") {
		cfg.IndexOf = indexOf
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
}

func registerRoutes(a *app.App) {
	srv := a.Server()

	srv.Get("/parameter_demo/", func(req *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("<html>Servus<br><br>QUERY Parameters<ul>")
		for k, v := range req.Query {
			resp.WriteString(fmt.Sprintf("<li><b>%s</b> %s</li>", k, v))
		}
		resp.WriteString("</ul><br>" +
			"<form action='' method='POST'>" +
			"First name: <input type='text' name='fname'><br><br>" +
			"Last name: <input type='text' name='lname'><br><br>" +
			"<input type='submit' value='Submit'></form>" +
			"</html>")
	})

	srv.Post("/parameter_demo/", func(req *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("<html>POST Parameters<ul>")
		for k, v := range req.PostForm {
			resp.WriteString(fmt.Sprintf("<li><b>%s</b> %s</li>", k, v))
		}
		resp.WriteString("</ul><br>QUERY Parameters<ul>")
		for k, v := range req.Query {
			resp.WriteString(fmt.Sprintf("<li><b>%s</b> %s</li>", k, v))
		}
		resp.WriteString("</ul></html>")
	})

	// The counter lives outside the engine; the handler closure shares it
	// across requests and the caller keeps it thread-safe.
	var counter atomic.Uint64
	srv.Get("/counter/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString(fmt.Sprintf("<h1>%d</h1>", counter.Add(1)-1))
	})

	// Status line only, no body.
	srv.Get("/dead/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
	})

	// No status, no body: the client sees an empty response.
	srv.Get("/idk/", func(*http.Request, *http.Response) {
		fmt.Println("hello")
	})
}
