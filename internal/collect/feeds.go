package collect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is one configured news feed source. Declaration order in the config
// file is the order candidates are considered in, so it matters.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// feedsConfig is the YAML config structure
// feeds:
//   - name: ...
//     url: https://...
type feedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads the feed source list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg feedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return cfg.Feeds, nil
}
