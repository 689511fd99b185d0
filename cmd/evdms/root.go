package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/driver"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/model"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/EisenVault/evdms/drivers"
)

var (
	flagProvider string
	flagBaseURL  string
	flagTimeout  time.Duration
	flagUsername string
	flagPassword string
	flagToken    string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "evdms",
	Short:         "Browse, search and transfer documents in an EisenVault DMS backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagProvider, "provider", "p", "angora", "backend type (angora or alfresco)")
	pf.StringVar(&flagBaseURL, "base-url", "", "backend base URL (defaults to EVDMS_BASE_URL)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "request timeout (defaults to EVDMS_TIMEOUT)")
	pf.StringVarP(&flagUsername, "username", "u", os.Getenv("EVDMS_USERNAME"), "login user")
	pf.StringVar(&flagPassword, "password", os.Getenv("EVDMS_PASSWORD"), "login password")
	pf.StringVar(&flagToken, "token", os.Getenv("EVDMS_TOKEN"), "pre-issued token (skips login)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(loginCmd, departmentsCmd, lsCmd, searchCmd, getCmd, putCmd, rmCmd, mkdirCmd)
}

// connect builds the configured provider and authenticates it, either with a
// pre-issued token or by logging in.
func connect(ctx context.Context) (driver.DMSProvider, error) {
	cfg, err := conf.FromEnv()
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	p, err := driver.NewProvider(flagProvider, cfg, log.StandardLogger())
	if err != nil {
		return nil, err
	}
	if flagToken != "" {
		p.SetToken(flagToken)
		return p, nil
	}
	if flagUsername == "" {
		return nil, fmt.Errorf("either --token or --username/--password is required")
	}
	if _, err := p.Login(ctx, flagUsername, flagPassword); err != nil {
		return nil, err
	}
	return p, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials and print the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := conf.FromEnv()
		if err != nil {
			return err
		}
		if flagBaseURL != "" {
			cfg.BaseURL = flagBaseURL
		}
		p, err := driver.NewProvider(flagProvider, cfg, log.StandardLogger())
		if err != nil {
			return err
		}
		auth, err := p.Login(cmd.Context(), flagUsername, flagPassword)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\ntoken: %s\n", auth.User.DisplayName, auth.User.ID, auth.Token)
		return nil
	},
}

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		depts, err := p.GetDepartments(cmd.Context())
		if err != nil {
			return err
		}
		for _, dep := range depts {
			fmt.Printf("%-36s  %s\n", dep.ID, dep.Name)
		}
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [parent-id]",
	Short: "List children of a folder or department (default: root)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		parent := model.BrowseItem{ID: "root", Type: model.TypeFolder, IsFolder: true}
		if len(args) == 1 {
			if dep, derr := p.GetDepartment(cmd.Context(), args[0]); derr == nil {
				parent = dep.Item()
			} else {
				parent = model.BrowseItem{ID: args[0], Type: model.TypeFolder, IsFolder: true}
			}
		}
		items, err := p.GetChildren(cmd.Context(), parent)
		if err != nil {
			return err
		}
		for _, it := range items {
			kind := "f"
			if it.IsFolder || it.IsDepartment {
				kind = "d"
			}
			fmt.Printf("%s  %-36s  %10d  %s\n", kind, it.ID, it.Size, it.Name)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search documents and folders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		result, err := p.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, f := range result.Folders {
			fmt.Printf("d  %-36s  %s\n", f.ID, f.Name)
		}
		for _, doc := range result.Documents {
			fmt.Printf("f  %-36s  %s\n", doc.ID, doc.Name)
		}
		fmt.Printf("%d items total\n", result.TotalItems)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <document-id> [output-path]",
	Short: "Download a document",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		doc, err := p.GetDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		body, err := p.DownloadDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := doc.Name
		if len(args) == 2 {
			out = args[1]
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to %s\n", len(body), out)
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <folder-id> <file>",
	Short: "Upload a file into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		doc, err := p.UploadDocument(cmd.Context(), args[0], model.FileUpload{
			Name:   filepath.Base(args[1]),
			Size:   info.Size(),
			Reader: f,
		})
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%s)\n", doc.Name, doc.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a document or folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		if err := p.DeleteDocument(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, errs.NotFound) {
				return p.DeleteFolder(cmd.Context(), args[0])
			}
			return err
		}
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <parent-id> <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Logout(cmd.Context())
		folder, err := p.CreateFolder(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", folder.Name, folder.ID)
		return nil
	},
}
