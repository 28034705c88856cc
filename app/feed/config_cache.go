package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	channelsDir string
	cache       map[string]*Config
	loaded      bool
	mu          sync.RWMutex
}

func NewConfigCache(channelsDir string) *ConfigCache {
	return &ConfigCache{
		channelsDir: channelsDir,
		cache:       make(map[string]*Config),
	}
}

// Run reads every channel file and swaps the whole set in at once. Files that fail to load
// are reported in the returned error. A reload with failures keeps the previous set; the
// first load keeps the channels that did load.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.channelsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.channelsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	loaded := make(map[string]*Config, len(files))
	var errs []error
	for _, file := range files {
		channelID := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.readConfig(channelID)
		if err != nil {
			errs = append(errs, fmt.Errorf("error loading %s: %w", file, err))
			continue
		}
		loaded[channelID] = config

		slog.Debug("Configuration loaded", "channel", channelID, "enabled", config.IsEnabled(), "policy", config.Policy.Type)
	}
	loadErr := errors.Join(errs...)

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if loadErr != nil && cc.loaded {
		return loadErr
	}
	// Channels whose files were removed drop out on reload.
	cc.cache = loaded
	cc.loaded = true

	return loadErr
}

// LoadConfig reloads a single channel file into the cache.
func (cc *ConfigCache) LoadConfig(channelID string) (*Config, error) {
	channelConfig, err := cc.readConfig(channelID)
	if err != nil {
		return nil, err
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[channelConfig.ID] = channelConfig

	return channelConfig, nil
}

func (cc *ConfigCache) readConfig(channelID string) (*Config, error) {
	configFile := cc.getConfigFilePath(channelID)
	channelConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	channelConfig.ID = channelID
	if channelConfig.Name == "" {
		channelConfig.Name = channelID
	}

	if err := cc.validateConfig(channelConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	return channelConfig, nil
}

func (cc *ConfigCache) GetConfig(channelID string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	channelConfig, ok := cc.cache[channelID]
	if !ok {
		return nil, fmt.Errorf("channel config with id '%s' not found", channelID)
	}
	return channelConfig, nil
}

// GetConfigs returns every loaded channel ordered by id.
func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, v := range cc.cache {
		configs = append(configs, v)
	}
	slices.SortFunc(configs, func(a, b *Config) int {
		return strings.Compare(a.ID, b.ID)
	})
	return configs
}

// GetEnabledConfigs returns enabled channels ordered by id so runs are deterministic.
func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	return slices.DeleteFunc(cc.GetConfigs(), func(c *Config) bool {
		return !c.IsEnabled()
	})
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var channelConfig Config
	if err := yaml.Unmarshal(data, &channelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if channelConfig.Policy.Type == "" {
		channelConfig.Policy.Type = PolicyLatest
	}
	if channelConfig.Markers.ShortForm == nil {
		channelConfig.Markers.ShortForm = DefaultMarkers.ShortForm
	}
	if channelConfig.Markers.MembersOnly == nil {
		channelConfig.Markers.MembersOnly = DefaultMarkers.MembersOnly
	}
	if channelConfig.Markers.Subject == nil {
		channelConfig.Markers.Subject = DefaultMarkers.Subject
	}

	return &channelConfig, nil
}

func (cc *ConfigCache) validateConfig(channelConfig *Config) error {
	if channelConfig == nil {
		return fmt.Errorf("channelConfig is nil")
	}

	if channelConfig.Reference == "" {
		return fmt.Errorf("channel reference is required")
	}

	switch channelConfig.Policy.Type {
	case PolicyLatest:
		if len(channelConfig.Policy.Include) > 0 || len(channelConfig.Policy.Exclude) > 0 {
			return fmt.Errorf("policy %q does not take include or exclude terms", PolicyLatest)
		}
	case PolicySmartSelect:
	default:
		return fmt.Errorf("unknown policy type %q", channelConfig.Policy.Type)
	}

	for i, term := range slices.Concat(channelConfig.Policy.Include, channelConfig.Policy.Exclude) {
		if term == "" {
			return fmt.Errorf("empty policy term at index %d", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(channelID string) string {
	return filepath.Join(cc.channelsDir, channelID+".yml")
}
