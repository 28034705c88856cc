package feed

import (
	"testing"
)

func latestConfig() *Config {
	return &Config{
		ID:      "latest",
		Policy:  Policy{Type: PolicyLatest},
		Markers: DefaultMarkers,
	}
}

func smartConfig(include, exclude []string) *Config {
	return &Config{
		ID:      "smart",
		Policy:  Policy{Type: PolicySmartSelect, Include: include, Exclude: exclude},
		Markers: DefaultMarkers,
	}
}

func titles(titles ...string) []Item {
	items := make([]Item, 0, len(titles))
	for i, title := range titles {
		items = append(items, Item{ID: string(rune('a' + i)), Title: title})
	}
	return items
}

func TestFilterer_Select_SmartSelectScenario(t *testing.T) {
	filterer := NewFilterer()

	items := titles("Weekly Outlook 📈", "Beginner Basics", "Shorts: quick tip")
	channelConfig := smartConfig([]string{"Outlook"}, []string{"Beginner"})

	selected, ok := filterer.Select(items, channelConfig)
	if !ok {
		t.Fatal("Expected a video to be selected")
	}
	if selected.Title != "Weekly Outlook 📈" {
		t.Errorf("Expected 'Weekly Outlook 📈', got '%s'", selected.Title)
	}
}

func TestFilterer_Select_RecencyPrecedence(t *testing.T) {
	filterer := NewFilterer()

	// Both items qualify; the second is a "better" match with two include terms.
	items := titles("FOMC preview", "FOMC and CPI deep dive")
	channelConfig := smartConfig([]string{"FOMC", "CPI"}, nil)

	selected, ok := filterer.Select(items, channelConfig)
	if !ok {
		t.Fatal("Expected a video to be selected")
	}
	if selected.ID != "a" {
		t.Errorf("Expected the first qualifying video, got '%s'", selected.Title)
	}
}

func TestFilterer_Select_ExclusionPrecedence(t *testing.T) {
	filterer := NewFilterer()

	items := titles("初心者向け 来週の展望")
	channelConfig := smartConfig([]string{"展望"}, []string{"初心者"})

	if _, ok := filterer.Select(items, channelConfig); ok {
		t.Error("Expected an item with both include and exclude terms to be rejected")
	}
}

func TestFilterer_Select_MembersOnlySuppression(t *testing.T) {
	filterer := NewFilterer()

	configs := map[string]*Config{
		"latest": latestConfig(),
		"smart":  smartConfig([]string{"展望"}, nil),
	}

	for name, channelConfig := range configs {
		t.Run(name, func(t *testing.T) {
			items := titles("【メンバー限定】来週の展望 ドル円")
			if _, ok := filterer.Select(items, channelConfig); ok {
				t.Error("Expected members-only video to be rejected")
			}
		})
	}
}

func TestFilterer_Select_LatestSkipsShortForm(t *testing.T) {
	filterer := NewFilterer()

	items := titles("ショート 速報", "Shorts: quick tip", "NY市場まとめ")

	selected, ok := filterer.Select(items, latestConfig())
	if !ok {
		t.Fatal("Expected a video to be selected")
	}
	if selected.Title != "NY市場まとめ" {
		t.Errorf("Expected 'NY市場まとめ', got '%s'", selected.Title)
	}
}

func TestFilterer_Select_SubjectCatchAll(t *testing.T) {
	filterer := NewFilterer()

	items := titles("雑談配信", "ドル円 今週の振り返り")
	channelConfig := smartConfig([]string{"FOMC"}, []string{"雑談"})

	selected, ok := filterer.Select(items, channelConfig)
	if !ok {
		t.Fatal("Expected catch-all subject token to qualify the video")
	}
	if selected.ID != "b" {
		t.Errorf("Expected second video, got '%s'", selected.Title)
	}
}

func TestFilterer_Select_NoMatch(t *testing.T) {
	filterer := NewFilterer()

	items := titles("Trading psychology", "Beginner Basics")
	channelConfig := smartConfig([]string{"Outlook"}, []string{"Beginner"})

	if _, ok := filterer.Select(items, channelConfig); ok {
		t.Error("Expected no video to be selected")
	}
	if _, ok := filterer.Select(nil, channelConfig); ok {
		t.Error("Expected no video to be selected from an empty feed")
	}
}

func TestFilterer_Evaluate_CaseSensitive(t *testing.T) {
	filterer := NewFilterer()
	channelConfig := smartConfig([]string{"Outlook"}, nil)
	channelConfig.Markers.Subject = nil

	accepted, reason := filterer.Evaluate(Item{Title: "weekly outlook"}, channelConfig)
	if accepted {
		t.Error("Expected case-sensitive matching to reject lowercase title")
	}
	if reason == "" {
		t.Error("Expected a rejection reason")
	}
}

func TestFilterer_Evaluate_CustomMarkers(t *testing.T) {
	filterer := NewFilterer()
	channelConfig := latestConfig()
	channelConfig.Markers.ShortForm = []string{"#shorts"}

	if accepted, _ := filterer.Evaluate(Item{Title: "Shorts are fine here"}, channelConfig); !accepted {
		t.Error("Expected default short-form marker to be replaced by channel markers")
	}
	if accepted, _ := filterer.Evaluate(Item{Title: "quick take #shorts"}, channelConfig); accepted {
		t.Error("Expected custom short-form marker to reject the video")
	}
}

func TestFilterer_Evaluate_UnknownPolicy(t *testing.T) {
	filterer := NewFilterer()
	channelConfig := &Config{Policy: Policy{Type: "popular"}}

	if accepted, _ := filterer.Evaluate(Item{Title: "anything"}, channelConfig); accepted {
		t.Error("Expected unknown policy to reject every video")
	}
}
