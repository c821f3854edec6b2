package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

// ============================================================================
// BLOCK PARSER — Block text → Widgets
// ============================================================================
// Pipeline:
//   1. Split into sections on `---` separator lines
//   2. Multi-section blocks: lift shared defaults out of the first section
//   3. Parse each section into a Draft (order-independent key: value lines)
//   4. Apply block defaults where the widget leaves them unset
//   5. Validate each Draft into a Config
// ============================================================================

// Field is the canonical name of a directive.
type Field string

const (
	fieldType        Field = "type"
	fieldSource      Field = "source"
	fieldTableTag    Field = "tableTag"
	fieldKeyColumn   Field = "keyColumn"
	fieldKey         Field = "key"
	fieldValueColumn Field = "valueColumn"
	fieldValue       Field = "value"
	fieldAggregate   Field = "aggregate"
	fieldPattern     Field = "pattern"
	fieldUseRegex    Field = "useRegex"
	fieldGoal        Field = "goal"
	fieldGoalColumn  Field = "goalColumn"
	fieldPeriod      Field = "period"
	fieldLabel       Field = "label"
	fieldLayout      Field = "layout"
	fieldGridColumns Field = "gridColumns"
)

type keyClass int

const (
	classWidget keyClass = iota + 1
	classShared
	classBlockOnly
)

type keySpec struct {
	field Field
	class keyClass
}

// keyTable maps every accepted (lowercased) key spelling to its field and
// block/widget class.
var keyTable = map[string]keySpec{
	"type":         {fieldType, classWidget},
	"keycolumn":    {fieldKeyColumn, classWidget},
	"key_column":   {fieldKeyColumn, classWidget},
	"key":          {fieldKey, classWidget},
	"valuecolumn":  {fieldValueColumn, classWidget},
	"value_column": {fieldValueColumn, classWidget},
	"value":        {fieldValue, classWidget},
	"pattern":      {fieldPattern, classWidget},
	"goal":         {fieldGoal, classWidget},
	"goalcolumn":   {fieldGoalColumn, classWidget},
	"goal_column":  {fieldGoalColumn, classWidget},
	"aggregate":    {fieldAggregate, classWidget},
	"useregex":     {fieldUseRegex, classWidget},
	"use_regex":    {fieldUseRegex, classWidget},
	"period":       {fieldPeriod, classWidget},
	"label":        {fieldLabel, classWidget},
	"source":       {fieldSource, classShared},
	"tabletag":     {fieldTableTag, classShared},
	"table_tag":    {fieldTableTag, classShared},
	"layout":       {fieldLayout, classBlockOnly},
	"gridcolumns":  {fieldGridColumns, classBlockOnly},
	"grid_columns": {fieldGridColumns, classBlockOnly},
}

func lookupKey(key string) (keySpec, bool) {
	spec, ok := keyTable[strings.ToLower(strings.TrimSpace(key))]
	return spec, ok
}

// ── Options ──────────────────────────────────────────────────────────────

// Option configures ParseBlock.
type Option func(*parseOptions)

type parseOptions struct {
	defaultPeriod Period
}

// WithDefaultPeriod sets the period given to widgets that do not set one.
func WithDefaultPeriod(p Period) Option {
	return func(o *parseOptions) {
		if p != "" {
			o.defaultPeriod = p
		}
	}
}

func applyOptions(opts []Option) *parseOptions {
	o := &parseOptions{defaultPeriod: PeriodAllTime}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ── Entry point ──────────────────────────────────────────────────────────

// ParseBlock parses block text into widgets. Invalid widgets carry their
// *ConfigError instead of a Config; valid siblings are unaffected.
func ParseBlock(text string, opts ...Option) *Block {
	o := applyOptions(opts)

	sections := SplitSections(text)
	block := &Block{}

	if len(sections) > 1 {
		defaults, rest := ExtractBlockDefaults(sections[0])
		block.Defaults = defaults
		if strings.TrimSpace(rest) == "" {
			sections = sections[1:]
		} else {
			sections[0] = rest
		}
	}
	if len(sections) == 0 {
		// An empty block still reports why nothing renders.
		sections = []string{""}
	}

	for i, section := range sections {
		draft := ParseSection(section)
		draft.ApplyDefaults(block.Defaults)
		cfg, err := draft.Validate(o.defaultPeriod)
		block.Widgets = append(block.Widgets, Widget{Index: i, Config: cfg, Err: err})
	}
	return block
}

// Parse is a convenience wrapper returning the valid configs and the joined
// widget errors.
func Parse(text string, opts ...Option) ([]Config, error) {
	block := ParseBlock(text, opts...)
	return block.Configs(), block.Err()
}

// ── Sections ─────────────────────────────────────────────────────────────

var separatorRegex = regexp.MustCompile(`\n-{3,}[ \t]*\n`)

// SplitSections splits block text on separator lines of three or more
// hyphens. Blank sections are dropped.
func SplitSections(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := separatorRegex.Split(text, -1)
	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sections = append(sections, p)
		}
	}
	return sections
}

// ExtractBlockDefaults lifts shared and block-only lines that precede the
// first widget line out of a multi-section block's first section. It returns
// the defaults and the remaining widget lines.
func ExtractBlockDefaults(section string) (BlockConfig, string) {
	var defaults BlockConfig
	var widget []string
	inWidget := false

	for _, line := range strings.Split(section, "\n") {
		if inWidget {
			widget = append(widget, line)
			continue
		}
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}
		spec, known := lookupKey(key)
		if !known {
			continue
		}
		if spec.class == classWidget {
			inWidget = true
			widget = append(widget, line)
			continue
		}
		switch spec.field {
		case fieldSource:
			defaults.Source = value
		case fieldTableTag:
			defaults.TableTag = value
		case fieldLayout:
			defaults.Layout = value
		case fieldGridColumns:
			if n, ok := parseIntPrefix(value); ok {
				defaults.GridColumns = n
			}
		}
	}
	return defaults, strings.Join(widget, "\n")
}

// ── Drafts ───────────────────────────────────────────────────────────────

// Draft is an unvalidated, order-independent set of directives for one
// widget. Keys are canonical fields; empty values count as unset.
type Draft map[Field]string

// ParseSection reads `key: value` lines into a Draft. Blank lines, `#`
// comments, lines without a colon and unknown keys are ignored.
func ParseSection(section string) Draft {
	d := make(Draft)
	for _, line := range strings.Split(section, "\n") {
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}
		spec, known := lookupKey(key)
		if !known {
			continue
		}
		d[spec.field] = value
	}
	return d
}

// ApplyDefaults copies the block source and table tag into the draft where
// the widget leaves them unset.
func (d Draft) ApplyDefaults(defaults BlockConfig) {
	if !d.has(fieldSource) && defaults.Source != "" {
		d[fieldSource] = defaults.Source
	}
	if !d.has(fieldTableTag) && defaults.TableTag != "" {
		d[fieldTableTag] = defaults.TableTag
	}
}

func (d Draft) has(f Field) bool {
	return d[f] != ""
}

// splitDirective returns the key and unquoted value of a directive line.
func splitDirective(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(trimmed[:idx])
	value := unquote(strings.TrimSpace(trimmed[idx+1:]))
	return key, value, true
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// parseIntPrefix reads a leading optionally-signed integer ("12 pages" → 12).
// It reports false when no digits lead the string.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
