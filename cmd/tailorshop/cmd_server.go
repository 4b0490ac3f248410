package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/internal/kernel"
	"github.com/shashiranjanraj/tailorshop/internal/server"
	"github.com/shashiranjanraj/tailorshop/pkg/router"
)

// tailorshop serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// tailorshop route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		mem := repositories.NewMemory()
		k, err := kernel.NewHTTPKernel(kernel.Deps{
			Users:     mem.Users(),
			Customers: mem.Customers(),
			Orders:    mem.Orders(),
		})
		if err != nil {
			return err
		}
		return printRoutes(os.Stdout, k.Routes())
	},
}

func printRoutes(out io.Writer, routes []router.Route) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
