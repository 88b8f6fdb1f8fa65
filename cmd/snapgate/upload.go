package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mhollis/snapgate"
	"github.com/mhollis/snapgate/config"
)

// uploadCmd uploads a directory of static assets as a snapshot.
var uploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Upload a directory as a snapshot of a build",
	Long: `Upload every file under a directory as content-addressed resources
and register them as one snapshot of the given build.

Resources are uploaded with the configured concurrency; files whose
content was already uploaded in this invocation are sent only once.
The file named by --root (default index.html) becomes the snapshot's
root document.

Example:
  snapgate upload ./public --build 1234 --name homepage -c config.yaml
  snapgate upload ./public --build 1234 --finalize -c config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	uploadCmd.Flags().String("build", "", "build ID to upload into (required)")
	uploadCmd.Flags().String("name", "", "snapshot name (defaults to the directory name)")
	uploadCmd.Flags().String("root", "index.html", "path of the root document, relative to <dir>")
	uploadCmd.Flags().Bool("finalize", false, "finalize the build after uploading")
	_ = uploadCmd.MarkFlagRequired("config")
	_ = uploadCmd.MarkFlagRequired("build")
}

// collectResources walks dir and turns every regular file into a
// content-addressed resource. Paths become URLs relative to the
// directory root, e.g. dir/assets/app.css -> /assets/app.css.
func collectResources(dir, rootDoc string) ([]snapgate.Resource, error) {
	var resources []snapgate.Resource

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		url := "/" + filepath.ToSlash(rel)
		var opts []snapgate.ResourceOption
		if filepath.ToSlash(rel) == filepath.ToSlash(rootDoc) {
			opts = append(opts, snapgate.AsRoot())
		}

		r, err := snapgate.NewResource(url, content, opts...)
		if err != nil {
			return fmt.Errorf("resource %s: %w", url, err)
		}
		resources = append(resources, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	buildID, _ := cmd.Flags().GetString("build")
	name, _ := cmd.Flags().GetString("name")
	rootDoc, _ := cmd.Flags().GetString("root")
	finalize, _ := cmd.Flags().GetBool("finalize")

	dir := args[0]
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	resources, err := collectResources(dir, rootDoc)
	if err != nil {
		return fmt.Errorf("failed to collect resources: %w", err)
	}
	if len(resources) == 0 {
		return fmt.Errorf("no files found under %s", dir)
	}
	logger.Info("resources collected", "dir", dir, "count", len(resources))

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.CreateSnapshot(ctx, buildID, snapgate.SnapshotOptions{
		Name:      name,
		Widths:    cfg.SnapshotDefaults.Widths,
		MinHeight: cfg.SnapshotDefaults.MinHeight,
		Resources: resources,
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if finalize {
		if err := client.FinalizeBuild(ctx, buildID); err != nil {
			return fmt.Errorf("finalize failed: %w", err)
		}
	}

	fmt.Printf("Uploaded %d resources as snapshot %q to build %s\n", len(resources), name, buildID)
	return nil
}
