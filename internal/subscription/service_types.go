package subscription

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Service type names.
const (
	ServiceVideoStreaming = "Video Streaming"
	ServiceMusicStreaming = "Music Streaming"
	ServiceFitness        = "Fitness"
	ServiceProductivity   = "Productivity"
	ServiceNews           = "News"
)

// ServiceTypeRule maps merchant text to a subscription service type.
type ServiceTypeRule struct {
	ServiceType string
	Regex       string
}

// DefaultServiceTypes is checked in order; music comes before video so that
// YOUTUBE MUSIC is not read as a video service.
func DefaultServiceTypes() []ServiceTypeRule {
	return []ServiceTypeRule{
		{ServiceMusicStreaming, `\b(SPOTIFY|APPLE\s*MUSIC|PANDORA|TIDAL|DEEZER|YOUTUBE\s*MUSIC|AMAZON\s*MUSIC|SIRIUS\s*XM|SOUNDCLOUD)\b`},
		{ServiceVideoStreaming, `\b(NETFLIX|HULU|DISNEY|HBO|MAX|PRIME\s*VIDEO|PARAMOUNT|PEACOCK|APPLE\s*TV|YOUTUBE\s*(TV|PREMIUM)|CRUNCHYROLL|SLING)\b`},
		{ServiceFitness, `\b(PELOTON|PLANET\s*FITNESS|GYM|FITNESS|EQUINOX|CLASSPASS|STRAVA|BEACHBODY|YOGA)\b`},
		{ServiceProductivity, `\b(MICROSOFT|OFFICE\s*365|ADOBE|DROPBOX|GOOGLE\s*(ONE|STORAGE|WORKSPACE)|ICLOUD|NOTION|SLACK|ZOOM|EVERNOTE|1PASSWORD|GITHUB)\b`},
		{ServiceNews, `\b(NYTIMES|NEW\s*YORK\s*TIMES|WSJ|WALL\s*STREET|WASHINGTON\s*POST|WAPO|ECONOMIST|MEDIUM|SUBSTACK|ATLANTIC)\b`},
	}
}

type serviceTypeMatcher struct {
	rules []compiledServiceType
}

type compiledServiceType struct {
	re          *regexp.Regexp
	serviceType string
}

func newServiceTypeMatcher(rules []ServiceTypeRule) (*serviceTypeMatcher, error) {
	m := &serviceTypeMatcher{rules: make([]compiledServiceType, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile service type %s: %w", r.ServiceType, err)
		}
		m.rules = append(m.rules, compiledServiceType{serviceType: r.ServiceType, re: re})
	}
	return m, nil
}

// classify returns the first matching service type, or Other.
func (m *serviceTypeMatcher) classify(fragments ...string) string {
	text := strings.Join(fragments, " ")
	for _, r := range m.rules {
		if r.re.MatchString(text) {
			return r.serviceType
		}
	}
	return model.ServiceTypeOther
}
