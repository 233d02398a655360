package core

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNilPlugin is returned when installing a nil plugin.
var ErrNilPlugin = errors.New("core: plugin cannot be nil")

// Plugin contributes review rules, e.g. company or customer specific checks
// on top of the built-in set.
type Plugin interface {
	Name() string
	Version() string
	Register(registry *PluginRegistry) error
}

// PluginRegistry accumulates plugin contributions during registration.
type PluginRegistry struct {
	rules []Rule
	names map[string]struct{}
}

// NewPluginRegistry constructs a plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{names: make(map[string]struct{})}
}

// RegisterRule adds a review rule. Rule names must be unique within a plugin.
func (r *PluginRegistry) RegisterRule(rule Rule) error {
	if rule == nil {
		return nil
	}
	if _, dup := r.names[rule.Name()]; dup {
		return fmt.Errorf("rule %s registered twice", rule.Name())
	}
	r.names[rule.Name()] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns a copy of registered rules.
func (r *PluginRegistry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// PluginMetadata describes an installed plugin.
type PluginMetadata struct {
	Name    string
	Version string
	Rules   []string
}

// InstallPlugin registers the plugin's rules with the session's rules engine.
// Installing the same plugin name twice fails and leaves the engine untouched.
func (s *Session) InstallPlugin(plugin Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, ErrNilPlugin
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plugins == nil {
		s.plugins = make(map[string]PluginMetadata)
	}
	if _, ok := s.plugins[plugin.Name()]; ok {
		return PluginMetadata{}, fmt.Errorf("plugin %s already registered", plugin.Name())
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, fmt.Errorf("register plugin %s: %w", plugin.Name(), err)
	}
	existing := make(map[string]struct{})
	for _, name := range s.engine.Rules() {
		existing[name] = struct{}{}
	}
	rules := registry.Rules()
	meta := PluginMetadata{Name: plugin.Name(), Version: plugin.Version()}
	for _, rule := range rules {
		if _, clash := existing[rule.Name()]; clash {
			return PluginMetadata{}, fmt.Errorf("plugin %s: rule %s already registered", plugin.Name(), rule.Name())
		}
		meta.Rules = append(meta.Rules, rule.Name())
	}
	for _, rule := range rules {
		s.engine.Register(rule)
	}
	s.plugins[plugin.Name()] = meta
	s.logger.Info("plugin installed", "plugin", meta.Name, "version", meta.Version, "rules", len(meta.Rules))
	return meta, nil
}

// RegisteredPlugins returns installed plugins ordered by name.
func (s *Session) RegisteredPlugins() []PluginMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PluginMetadata, 0, len(s.plugins))
	for _, meta := range s.plugins {
		meta.Rules = append([]string(nil), meta.Rules...)
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
