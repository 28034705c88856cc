package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Select returns the first item, in feed order, that the channel policy accepts.
// Later items are never preferred over an earlier match.
func (f *Filterer) Select(items []Item, channelConfig *Config) (Item, bool) {
	for _, item := range items {
		accepted, reason := f.Evaluate(item, channelConfig)
		if accepted {
			return item, true
		}
		slog.Debug("Video rejected", "channel", channelConfig.ID, "video_id", item.ID, "title", item.Title, "reason", reason)
	}
	return Item{}, false
}

// Evaluate applies the members-only gate and then the channel policy to one item.
func (f *Filterer) Evaluate(item Item, channelConfig *Config) (bool, string) {
	markers := channelConfig.Markers

	if term, ok := f.containsAny(item.Title, markers.MembersOnly); ok {
		return false, fmt.Sprintf("members-only marker '%s'", term)
	}

	policy := channelConfig.Policy
	switch policy.Type {
	case PolicyLatest:
		if term, ok := f.containsAny(item.Title, markers.ShortForm); ok {
			return false, fmt.Sprintf("short-form marker '%s'", term)
		}
		return true, ""

	case PolicySmartSelect:
		if term, ok := f.containsAny(item.Title, policy.Exclude); ok {
			return false, fmt.Sprintf("excluded term '%s'", term)
		}
		if _, ok := f.containsAny(item.Title, policy.Include); ok {
			return true, ""
		}
		if _, ok := f.containsAny(item.Title, markers.Subject); ok {
			return true, ""
		}
		return false, fmt.Sprintf("no include term of %v", policy.Include)

	default:
		return false, fmt.Sprintf("unknown policy type %q", policy.Type)
	}
}

func (f *Filterer) containsAny(value string, terms []string) (string, bool) {
	for _, term := range terms {
		if term != "" && strings.Contains(value, term) {
			return term, true
		}
	}
	return "", false
}
