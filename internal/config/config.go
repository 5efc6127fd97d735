package config

import (
	"fmt"

	"github.com/go-ini/ini"
	"github.com/nguyengg/tarball"
	"github.com/nguyengg/tarball/archive"
	"github.com/nguyengg/tarball/codec"
)

// DefaultsConfig contains the settings from the [defaults] section.
//
// Nil pointers and empty slices mean the setting is absent.
type DefaultsConfig struct {
	Algorithm      *codec.Algorithm
	Level          *codec.Level
	Mode           *archive.Mode
	FollowSymlinks *bool
	IgnoreFiles    []string
	Ignore         []string
}

// Defaults returns the [defaults] section.
//
// An error is returned if any present value cannot be parsed.
func (l *Loader) Defaults() (c DefaultsConfig, err error) {
	sec, err := l.cfg.GetSection("defaults")
	if err != nil {
		return c, nil
	}

	if k, ok := key(sec, "algorithm"); ok {
		alg, err := codec.ParseAlgorithm(k.String())
		if err != nil {
			return c, fmt.Errorf("[defaults] algorithm error: %w", err)
		}
		c.Algorithm = &alg
	}

	if k, ok := key(sec, "level"); ok {
		level, err := codec.ParseLevel(k.String())
		if err != nil {
			return c, fmt.Errorf("[defaults] level error: %w", err)
		}
		c.Level = &level
	}

	if k, ok := key(sec, "mode"); ok {
		mode, err := archive.ParseMode(k.String())
		if err != nil {
			return c, fmt.Errorf("[defaults] mode error: %w", err)
		}
		c.Mode = &mode
	}

	if k, ok := key(sec, "follow-symlinks"); ok {
		v, err := k.Bool()
		if err != nil {
			return c, fmt.Errorf("[defaults] follow-symlinks error: %w", err)
		}
		c.FollowSymlinks = &v
	}

	if k, ok := key(sec, "ignore-file"); ok {
		c.IgnoreFiles = k.Strings(",")
	}

	if k, ok := key(sec, "ignore"); ok {
		c.Ignore = k.Strings(",")
	}

	return c, nil
}

// Defaults calls Loader.Defaults on the DefaultLoader instance.
func Defaults() (DefaultsConfig, error) {
	return DefaultLoader.Defaults()
}

// Apply copies the present settings to opts.
//
// Ignore files and globs are prepended so that those given afterwards take precedence.
func (c DefaultsConfig) Apply(opts *tarball.Options) {
	if c.Algorithm != nil {
		opts.Algorithm = *c.Algorithm
	}
	if c.Level != nil {
		opts.Level = *c.Level
	}
	if c.Mode != nil {
		opts.Mode = *c.Mode
	}
	if c.FollowSymlinks != nil {
		opts.FollowSymlinks = *c.FollowSymlinks
	}

	opts.IgnoreFiles = append(c.IgnoreFiles[:len(c.IgnoreFiles):len(c.IgnoreFiles)], opts.IgnoreFiles...)
	opts.Ignore = append(c.Ignore[:len(c.Ignore):len(c.Ignore)], opts.Ignore...)
}

// UploadConfig contains the settings from the [upload] section.
type UploadConfig struct {
	// URI is the s3://bucket/prefix location to upload to, built from the bucket and prefix keys.
	URI     string
	Profile string
}

// ForUpload returns the [upload] section.
//
// The zero value is returned if the section is absent or has no bucket.
func (l *Loader) ForUpload() (c UploadConfig) {
	sec, err := l.cfg.GetSection("upload")
	if err != nil {
		return c
	}

	bucket := sec.Key("bucket").String()
	if bucket == "" {
		return c
	}

	c.URI = "s3://" + bucket + "/" + sec.Key("prefix").String()
	c.Profile = sec.Key("profile").String()

	return
}

// ForUpload calls Loader.ForUpload on the DefaultLoader instance.
func ForUpload() UploadConfig {
	return DefaultLoader.ForUpload()
}

func key(sec *ini.Section, name string) (*ini.Key, bool) {
	if !sec.HasKey(name) {
		return nil, false
	}

	return sec.Key(name), true
}
