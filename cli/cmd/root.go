package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
	cliutil "github.com/wkalt/ros2dyn/cli/util"
	"github.com/wkalt/ros2dyn/msgpath"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/schemastore"
	"github.com/wkalt/ros2dyn/storage"
	"github.com/wkalt/ros2dyn/util/log"
	"github.com/wkalt/ros2dyn/util/schema"
)

const schemaCacheBytes = 16 * 1024 * 1024

var (
	msgPaths    []string
	verbose     bool
	jsonLogs    bool
	storeDir    string
	s3Endpoint  string
	s3AccessKey string
	s3SecretKey string
	s3Secure    bool
	bucket      string
)

var rootCmd = &cobra.Command{
	Use:   "ros2dyn",
	Short: "Parse ROS2 message definitions and decode CDR messages",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Configure(os.Stderr, verbose, jsonLogs)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		bailf("error: %v", err)
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	checkErr(err)
	return filepath.Join(home, ".ros2dyn")
}

// defaultMsgPaths returns the share directories of the sourced ROS2
// workspaces.
func defaultMsgPaths() []string {
	paths := []string{}
	for _, prefix := range filepath.SplitList(os.Getenv("AMENT_PREFIX_PATH")) {
		if prefix != "" {
			paths = append(paths, filepath.Join(prefix, "share"))
		}
	}
	return paths
}

func openStorage() (storage.Provider, error) {
	if s3Endpoint != "" {
		if bucket == "" {
			return nil, fmt.Errorf("--bucket is required with --s3-endpoint")
		}
		mc, err := minio.New(s3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(s3AccessKey, s3SecretKey, ""),
			Secure: s3Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return storage.NewS3Store(mc, bucket), nil
	}
	dir := storeDir
	if dir == "" {
		dir = filepath.Join(configDir(), "store")
	}
	if err := cliutil.EnsureDirectoryExists(dir); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return storage.NewDirectoryStore(dir)
}

func openSchemaStore() (*schemastore.SchemaStore, error) {
	provider, err := openStorage()
	if err != nil {
		return nil, err
	}
	return schemastore.NewSchemaStore(provider, schemaCacheBytes), nil
}

// buildRegistry returns a registry over the msg paths, falling back to the
// schema store.
func buildRegistry(ctx context.Context, store *schemastore.SchemaStore) (resolver.Registry, error) {
	paths := msgPaths
	if len(paths) == 0 {
		paths = defaultMsgPaths()
	}
	fs, err := msgpath.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load msg paths: %w", err)
	}
	log.Debugw(ctx, "loaded msg paths", "paths", strings.Join(paths, ","), "messages", len(fs.Messages()))
	if store == nil {
		return fs, nil
	}
	return resolver.Chain(fs, store.Registry(ctx)), nil
}

// resolve looks up a type by name and resolves its dependencies.
func resolve(registry resolver.Registry, name string) (*resolver.Graph, error) {
	id, err := schema.ParseIdentifier(name)
	if err != nil {
		return nil, err
	}
	root, err := registry.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", id, err)
	}
	return resolver.Resolve(root, registry)
}

// setup opens the schema store and registry used by most commands.
func setup(ctx context.Context) (*schemastore.SchemaStore, resolver.Registry) {
	store, err := openSchemaStore()
	checkErr(err)
	registry, err := buildRegistry(ctx, store)
	checkErr(err)
	return store, registry
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVarP(&msgPaths, "msg-path", "m", nil,
		"directory to search for <pkg>/msg/*.msg and <pkg>/srv/*.srv (default: $AMENT_PREFIX_PATH share directories)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&jsonLogs, "json-logs", "", false, "write logs as JSON")
	flags.StringVarP(&storeDir, "store", "", "", "schema store directory (default: ~/.ros2dyn/store)")
	flags.StringVarP(&s3Endpoint, "s3-endpoint", "", "", "use an S3 compatible schema store at this endpoint")
	flags.StringVarP(&s3AccessKey, "s3-access-key", "", os.Getenv("ROS2DYN_S3_ACCESS_KEY"), "S3 access key")
	flags.StringVarP(&s3SecretKey, "s3-secret-key", "", os.Getenv("ROS2DYN_S3_SECRET_KEY"), "S3 secret key")
	flags.BoolVarP(&s3Secure, "s3-secure", "", false, "use TLS for S3")
	flags.StringVarP(&bucket, "bucket", "", "", "S3 bucket for the schema store")
}
