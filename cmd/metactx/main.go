package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/metactx/pkg/auth"
	"github.com/ajitpratap0/metactx/pkg/connectorctx"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "metactx",
		Short: "metactx - connector context for open metadata",
		Long: `metactx maintains open metadata elements on behalf of integration connectors.
It serves a metadata repository over HTTP, loads YAML catalogs through the
connector context clients and queries local or remote repositories.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a yaml or json configuration file")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "Base URL of a remote metadata server (default: in-process repository)")

	root.AddCommand(
		versionCommand(),
		kindsCommand(),
		a.tokenCommand(),
		a.serveCommand(),
		a.loadCommand(),
		a.getCommand(),
		a.findCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "metactx v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the element kinds and the relationships they take part in",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			types := typedefs.Default()
			for _, k := range connectorctx.Kinds() {
				fmt.Fprintf(out, "%s\n", k.TypeName)
				if len(k.NameProperties) > 0 {
					fmt.Fprintf(out, "  names:  %s\n", strings.Join(k.NameProperties, ", "))
				}
				for _, r := range types.RelationshipsFor(k.TypeName) {
					fmt.Fprintf(out, "  - %s (%s -> %s)\n", r.Name, r.End1.EntityType, r.End2.EntityType)
				}
			}
		},
	}
}

func (a *app) tokenCommand() *cobra.Command {
	var user string
	var ttl time.Duration
	var roles []string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the metadata server",
		Long: `Issue an HS256 bearer token signed with server.jwt_secret. The server only
accepts a token on requests whose path user equals the token subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if a.cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwt_secret is not configured")
			}
			token, err := auth.NewManager(a.cfg.Server.JWTSecret, "").Issue(user, ttl, roles...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Subject of the token (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Roles to carry in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
