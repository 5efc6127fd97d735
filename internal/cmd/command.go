package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/tarball"
	"github.com/nguyengg/tarball/archive"
	"github.com/nguyengg/tarball/codec"
	"github.com/nguyengg/tarball/internal"
	"github.com/nguyengg/tarball/internal/config"
	"github.com/nguyengg/tarball/internal/upload"
)

// Command is the tarball command line.
type Command struct {
	Algorithm      codec.Algorithm `short:"a" long:"algorithm" description:"compression algorithm: none, gzip, bzip2, deflate, lz4, xz, or zstd" default-mask:"none"`
	Gzip           bool            `short:"g" long:"gzip" description:"compress with gzip, same as --algorithm=gzip"`
	Bzip2          bool            `short:"b" long:"bzip2" description:"compress with bzip2, same as --algorithm=bzip2"`
	Xz             bool            `short:"x" long:"xz" description:"compress with xz, same as --algorithm=xz"`
	Zstd           bool            `short:"z" long:"zstd" description:"compress with zstd, same as --algorithm=zstd"`
	Level          codec.Level     `short:"l" long:"level" description:"compression level: 0-9 (up to 21 for zstd), fastest, default, or best" default-mask:"default"`
	Minimal        bool            `short:"m" long:"minimal" description:"create a minimal archive without owners, permissions, or timestamps"`
	FollowSymlinks bool            `short:"L" long:"follow-symlinks" description:"archive the targets of symlinks instead of the links"`
	Output         string          `short:"o" long:"output" description:"archive all arguments into this file" value-name:"FILE"`
	IgnoreFiles    []string        `short:"I" long:"ignore-file" description:"ignore files matching gitignore patterns in FILE; may be repeated" value-name:"FILE"`
	Ignore         []string        `short:"i" long:"ignore" description:"ignore files matching gitignore pattern GLOB, or include them if GLOB starts with !; may be repeated" value-name:"GLOB"`
	Quiet          []bool          `short:"q" long:"quiet" description:"suppress output; may be repeated"`
	Verbose        []bool          `short:"v" long:"verbose" description:"print files being archived; may be repeated"`
	Upload         string          `long:"upload" description:"upload every archive created to this S3 location" value-name:"s3://bucket/prefix"`
	Profile        string          `long:"profile" description:"AWS profile to use for --upload"`
	Args           struct {
		Paths []flags.Filename `positional-arg-name:"path" description:"the files or directories to archive" required:"yes"`
	} `positional-args:"yes"`

	parser *flags.Parser
}

// NewParser creates the parser for Command.
func NewParser(c *Command) *flags.Parser {
	c.parser = flags.NewNamedParser("tarball", flags.Default)
	if _, err := c.parser.AddGroup("Application Options", "", c); err != nil {
		panic(err)
	}

	return c.parser
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %v", args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config.DefaultLoader.Profile = c.Profile
	if name, err := config.Load(ctx); err != nil {
		return fmt.Errorf(`load config file "%s" error: %w`, name, err)
	}

	defaults, err := config.Defaults()
	if err != nil {
		return err
	}

	verbosity := 1 - len(c.Quiet) + len(c.Verbose)
	paths := make([]string, len(c.Args.Paths))
	for i, p := range c.Args.Paths {
		paths[i] = string(p)
	}

	var alg codec.Algorithm
	created, err := tarball.Create(ctx, paths, defaults.Apply, c.apply, func(opts *tarball.Options) {
		opts.Verbosity = verbosity
		if verbosity >= 1 {
			opts.Progress = internal.NewProgress(internal.NewLogger(""), 5*time.Second)
		}
		alg = opts.Algorithm
	})
	if err != nil {
		return err
	}

	uri := c.Upload
	if uri == "" {
		uri = config.ForUpload().URI
	}
	if uri == "" {
		return nil
	}

	return c.upload(ctx, uri, created, alg)
}

// apply copies the flags that were given on the command line to opts, so that they override config file values.
func (c *Command) apply(opts *tarball.Options) {
	if c.isSet("algorithm") {
		opts.Algorithm = c.Algorithm
	}
	switch {
	case c.Zstd:
		opts.Algorithm = codec.Zstd
	case c.Xz:
		opts.Algorithm = codec.Xz
	case c.Bzip2:
		opts.Algorithm = codec.Bzip2
	case c.Gzip:
		opts.Algorithm = codec.Gzip
	}

	if c.isSet("level") {
		opts.Level = c.Level
	}
	if c.Minimal {
		opts.Mode = archive.Minimal
	}
	if c.FollowSymlinks {
		opts.FollowSymlinks = true
	}

	opts.Output = c.Output
	opts.IgnoreFiles = append(opts.IgnoreFiles, c.IgnoreFiles...)
	opts.Ignore = append(opts.Ignore, c.Ignore...)
}

func (c *Command) isSet(long string) bool {
	if c.parser == nil {
		return false
	}

	o := c.parser.FindOptionByLongName(long)
	return o != nil && o.IsSet()
}

func (c *Command) upload(ctx context.Context, uri string, names []string, alg codec.Algorithm) error {
	client, err := config.NewS3Client(ctx)
	if err != nil {
		return fmt.Errorf("create s3 client error: %w", err)
	}

	success := 0
	for i, name := range names {
		logger := internal.NewLogger(internal.Prefix(i, len(names), name))

		if _, err = upload.Upload(ctx, client, uri, name, alg.Codec().ContentType(), func(opts *upload.Options) {
			opts.Logger = logger
			opts.Suffix = archive.Normal.Ext() + alg.Ext()
		}); err != nil {
			logger.Printf("upload error: %v", err)
			continue
		}

		success++
	}

	log.Printf("successfully uploaded %d/%d files", success, len(names))
	if success != len(names) {
		return fmt.Errorf("%d/%d uploads failed", len(names)-success, len(names))
	}

	return nil
}
