package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// Role distinguishes the two ACL roles a client can hold.
type Role string

const (
	Producer Role = "producer"
	Consumer Role = "consumer"
)

// TagDescription is one entry from the "tags" section of the
// configuration file: an id/name/description plus the per-client-pattern
// CRUD letters granted for the tag-listing commands.
type TagDescription struct {
	ID          string
	Name        string
	Description string

	access []patternRule
}

type patternRule struct {
	pattern string
	usages  map[string]struct{}
}

// rawConfig mirrors the on-disk JSON shape from the configuration file.
type rawConfig struct {
	Usages     []string            `json:"usages"`
	Portfolios []string            `json:"portfolios"`
	Consumers  map[string][]string `json:"consumers"`
	Producers  map[string][]string `json:"producers"`
	Tags       []rawTag            `json:"tags"`
}

type rawTag struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Access      map[string]string `json:"access"`
}

// snapshot is the parsed, queryable form of one configuration file. A
// Configuration atomically swaps its snapshot on Reload so concurrent ACL
// queries never see a half-applied update.
type snapshot struct {
	usages     map[string]struct{}
	portfolios map[string]struct{}
	producers  []patternRule
	consumers  []patternRule
	tags       []*TagDescription
	tagsByID   map[string]*TagDescription
}

// Configuration is the run-time ACL source of truth. It is loaded once at
// startup and hot-reloaded on a RELOAD signal (cmd/secwall wires that to
// SIGHUP); reads never block on a reload in progress beyond the
// reader-writer lock's ordinary fairness.
type Configuration struct {
	mu   sync.RWMutex
	path string
	snap *snapshot
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Configuration, error) {
	c := &Configuration{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the configuration file from disk and atomically
// replaces the in-memory snapshot. A parse error leaves the previous
// snapshot in place.
func (c *Configuration) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading configuration %s: %w", c.path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing configuration %s: %w", c.path, err)
	}

	snap, err := buildSnapshot(&raw)
	if err != nil {
		return fmt.Errorf("configuration %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

func buildSnapshot(raw *rawConfig) (*snapshot, error) {
	s := &snapshot{
		usages:     toSet(raw.Usages),
		portfolios: toSet(raw.Portfolios),
		producers:  toPatternRules(raw.Producers),
		consumers:  toPatternRules(raw.Consumers),
		tagsByID:   make(map[string]*TagDescription, len(raw.Tags)),
	}
	for _, rt := range raw.Tags {
		td := &TagDescription{ID: rt.ID, Name: rt.Name, Description: rt.Description}
		for pattern, crud := range rt.Access {
			td.access = append(td.access, patternRuleFor(pattern, crud))
		}
		sort.Slice(td.access, func(i, j int) bool { return td.access[i].pattern < td.access[j].pattern })
		s.tags = append(s.tags, td)
		s.tagsByID[td.ID] = td
	}
	sort.Slice(s.tags, func(i, j int) bool { return s.tags[i].ID < s.tags[j].ID })
	return s, nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func toPatternRules(in map[string][]string) []patternRule {
	out := make([]patternRule, 0, len(in))
	for pattern, usages := range in {
		out = append(out, patternRule{pattern: pattern, usages: toSet(usages)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pattern < out[j].pattern })
	return out
}

// patternRuleFor packs a tag's CRUD-letters string into the same
// patternRule shape used for usage grants, keyed by single-character
// pseudo-usages "c", "r", "u", "d" so matchClient can be shared.
func patternRuleFor(pattern, crud string) patternRule {
	letters := make(map[string]struct{}, len(crud))
	for _, r := range strings.ToLower(crud) {
		letters[string(r)] = struct{}{}
	}
	return patternRule{pattern: pattern, usages: letters}
}

// matchClient reports whether pattern matches client. Patterns are
// path.Match-style globs (*, ?, character classes); a pattern with no
// wildcard characters is an exact match (see the ACL pattern design
// decision: regex on attacker-adjacent config strings is avoided in favor
// of glob matching, the same approach the wallet's pattern helper uses
// elsewhere).
func matchClient(pattern, client string) bool {
	ok, err := path.Match(pattern, client)
	if err != nil {
		return pattern == client
	}
	return ok
}

func (s *snapshot) isInRole(client string, rules []patternRule) bool {
	for _, r := range rules {
		if matchClient(r.pattern, client) {
			return true
		}
	}
	return false
}

func (s *snapshot) grantedUsages(client string, rules []patternRule) map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range rules {
		if !matchClient(r.pattern, client) {
			continue
		}
		for u := range r.usages {
			out[u] = struct{}{}
		}
	}
	return out
}

func (c *Configuration) snapshot() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// IsProducer reports whether client matches any pattern in "producers".
func (c *Configuration) IsProducer(client string) bool {
	return c.snapshot().isInRole(client, c.snapshot().producers)
}

// IsConsumer reports whether client matches any pattern in "consumers".
func (c *Configuration) IsConsumer(client string) bool {
	return c.snapshot().isInRole(client, c.snapshot().consumers)
}

// GrantedUsages returns the union of usage sets over every pattern
// matching client in the given role's grant table.
func (c *Configuration) GrantedUsages(client string, role Role) map[string]struct{} {
	s := c.snapshot()
	switch role {
	case Producer:
		return s.grantedUsages(client, s.producers)
	case Consumer:
		return s.grantedUsages(client, s.consumers)
	default:
		return map[string]struct{}{}
	}
}

// IsKnownUsage reports whether usage appears in the configuration's
// declared usage set.
func (c *Configuration) IsKnownUsage(usage string) bool {
	_, ok := c.snapshot().usages[usage]
	return ok
}

// IsKnownPortfolio reports whether name appears in the configuration's
// declared portfolio set.
func (c *Configuration) IsKnownPortfolio(name string) bool {
	_, ok := c.snapshot().portfolios[name]
	return ok
}

// PortfolioNames returns every portfolio name declared in the
// configuration, sorted.
func (c *Configuration) PortfolioNames() []string {
	s := c.snapshot()
	out := make([]string, 0, len(s.portfolios))
	for name := range s.portfolios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TagAccess reports whether client holds the given single-letter CRUD
// permission ("c", "r", "u", or "d") on tag, by the union of every
// matching pattern's access string. Absence of a tag, or of any matching
// pattern, is default-deny.
func (c *Configuration) TagAccess(client, tag, method string) bool {
	s := c.snapshot()
	td, ok := s.tagsByID[tag]
	if !ok {
		return false
	}
	letter := strings.ToLower(method)
	for _, rule := range td.access {
		if !matchClient(rule.pattern, client) {
			continue
		}
		if _, ok := rule.usages[letter]; ok {
			return true
		}
	}
	return false
}

// ListTags returns every TagDescription for which client holds the given
// CRUD letter, sorted by id. Used by GET_PRIVATE_READABLE_TAG_LIST ("r")
// and GET_EDITABLE_TAG_LIST ("c", typically combined with "u"/"d" checks
// per-operation by the caller).
func (c *Configuration) ListTags(client, method string) []TagDescription {
	s := c.snapshot()
	out := make([]TagDescription, 0, len(s.tags))
	for _, td := range s.tags {
		if c.TagAccess(client, td.ID, method) {
			out = append(out, TagDescription{ID: td.ID, Name: td.Name, Description: td.Description})
		}
	}
	return out
}
