package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Bitlatte/redefine/internal/feed"
)

type Config struct {
	Site            string `mapstructure:"site"`
	SiteTitle       string `mapstructure:"siteTitle"`
	FeedTitle       string `mapstructure:"feedTitle"`
	FeedDescription string `mapstructure:"feedDescription"`
	ContentDir      string `mapstructure:"contentDir"`
	PublicDir       string `mapstructure:"publicDir"`
	LayoutsDir      string `mapstructure:"layoutsDir"`
	OutputDir       string `mapstructure:"outputDir"`
	Port            int    `mapstructure:"port"`
	LogLevel        string `mapstructure:"logLevel"`
	LogFormat       string `mapstructure:"logFormat"`
}

const defaultFeedDescription = "At Redefine, we empower businesses to harness the full power " +
	"of their data through advanced data engineering and analytics solutions."

// Defaults are the values used when neither the config file nor the
// environment sets a key.
var Defaults = map[string]interface{}{
	"site":            "https://redefine.io",
	"siteTitle":       "Redefine",
	"feedTitle":       "Redefine | Data Reimagined",
	"feedDescription": defaultFeedDescription,
	"contentDir":      "src/content",
	"publicDir":       "public",
	"layoutsDir":      "",
	"outputDir":       "dist",
	"port":            4321,
	"logLevel":        "info",
	"logFormat":       "text",
}

func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Site); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("site must be an absolute URL, got %q", c.Site))
	}
	if c.ContentDir == "" {
		errs = append(errs, errors.New("contentDir must be set"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("outputDir must be set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Feed returns the static metadata of the blog feed.
func (c Config) Feed() feed.Config {
	return feed.Config{
		Title:       c.FeedTitle,
		Description: c.FeedDescription,
		Site:        c.Site,
	}
}
