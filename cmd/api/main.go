package main

import (
	"fmt"
	"os"

	"tb-treatment-plans/internal/config"

	"github.com/spf13/cobra"
)

// @title TB Treatment Plans API
// @version 1.0
// @description Deriva planes de tratamiento de tuberculosis: dosis FDC por banda de peso, fecha de fin y controles quincenales.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "tbplan",
		Short:         "TB treatment plan service",
		SilenceUsage:  true,
		SilenceErrors: true,
		// sin subcomando => serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("port", "", "HTTP port (default $PORT)")
	flags.String("log-level", "", "debug|info|warn|error (default $LOG_LEVEL)")
	flags.String("log-format", "", "text|json (default $LOG_FORMAT)")

	// los flags solo pisan a env/.env cuando se pasan explícitamente
	_ = v.BindPFlag("PORT", flags.Lookup("port"))
	_ = v.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = v.BindPFlag("LOG_FORMAT", flags.Lookup("log-format"))

	root.AddCommand(newServeCmd(v), newDeriveCmd())
	return root
}
