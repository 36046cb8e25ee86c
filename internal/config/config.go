// Package config loads the project-local .zipkit file, the way the
// teacher's internal/config.Loader walks up the directory tree looking
// for ".xy3": an INI file (github.com/go-ini/ini) holding default
// settings for the CLI's add subcommand. The core engine never reads
// this package.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-ini/ini"
)

var cfg = ini.Empty()

// Load will traverse the directory hierarchy upwards to find the first ".zipkit" file available.
func Load(ctx context.Context) (string, error) {
	var (
		path        = filepath.Join(".", ".zipkit")
		fi          os.FileInfo
		err         error
		cur, parent string
	)

	if cur, err = os.Getwd(); err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if fi, err = os.Stat(path); err == nil {
			if !fi.IsDir() {
				break
			}

			continue
		}

		if os.IsNotExist(err) {
			parent = filepath.Dir(cur)

			if parent == cur || parent == "." || parent == "/" {
				return "", nil
			}

			path = filepath.Join(parent, ".zipkit")
			cur = parent
			continue
		}

		return "", err
	}

	cfg, err = ini.Load(path)
	if err != nil {
		cfg = ini.Empty()
		return path, err
	}

	return path, nil
}

// AddConfig contains defaults for the add subcommand.
type AddConfig struct {
	Method      string
	Permissions os.FileMode
}

var cfgCache sync.Map

// ForAdd returns the [add] section defaults, falling back to method
// "deflate" and permissions 0o755 when unset.
func ForAdd() (c AddConfig) {
	if cache, ok := cfgCache.Load("add"); ok {
		return cache.(AddConfig)
	}

	c = AddConfig{Method: "deflate", Permissions: 0o755}

	sec, err := cfg.GetSection("add")
	if err != nil {
		return c
	}

	if v := sec.Key("method").Value(); v != "" {
		c.Method = v
	}
	if v := sec.Key("permissions").Value(); v != "" {
		if mode, err := strconv.ParseUint(v, 8, 32); err == nil {
			c.Permissions = os.FileMode(mode)
		}
	}

	cfgCache.Store("add", c)
	return
}
