package generator

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
)

type fieldPattern struct {
	fieldType string
	re        *regexp.Regexp
	handler   Handler
}

// Generator produces message variations by applying regex-driven field
// substitutions to a template. A fixed seed makes the output sequence
// reproducible.
type Generator struct {
	patterns []fieldPattern
	rate     float64
	maxVars  int
	rng      *rand.Rand
	cache    map[string]string
	log      *zap.Logger
}

func NewGenerator(cfg conf.Generation) (*Generator, error) {
	log := zap.L().With(
		zap.String("generator", "message"),
	)

	rng := rand.New(rand.NewSource(cfg.Seed))

	// Sorted so the rng is consumed in a stable order across runs.
	fieldTypes := make([]string, 0, len(cfg.FieldPatterns))
	for fieldType := range cfg.FieldPatterns {
		fieldTypes = append(fieldTypes, fieldType)
	}
	sort.Strings(fieldTypes)

	patterns := make([]fieldPattern, 0, len(fieldTypes))
	for _, fieldType := range fieldTypes {
		re, err := regexp.Compile("(?im)" + cfg.FieldPatterns[fieldType])
		if err != nil {
			log.Warn("invalid field pattern, skipped",
				zap.String("field", fieldType), zap.Error(err))
			continue
		}

		patterns = append(patterns, fieldPattern{
			fieldType: fieldType,
			re:        re,
			handler:   NewHandler(fieldType, cfg.Substitutions, rng),
		})
	}

	if len(patterns) == 0 {
		return nil, errors.New("no usable field patterns")
	}

	return &Generator{
		patterns: patterns,
		rate:     cfg.FieldSubstitutionRate,
		maxVars:  cfg.MaxVariationsPerTemplate,
		rng:      rng,
		cache:    make(map[string]string),
		log:      log,
	}, nil
}

// GenerateMessage applies every field pattern to the template once.
// A value already substituted in this run is replaced the same way
// again, so one message stays internally consistent.
func (g *Generator) GenerateMessage(template string) string {
	message := template
	for _, p := range g.patterns {
		message = g.substituteAll(message, p)
	}
	return message
}

// GenerateVariations produces count messages from the template. A
// count below one draws a random size up to the configured maximum.
func (g *Generator) GenerateVariations(template string, count int) []string {
	if count < 1 {
		count = 1 + g.rng.Intn(g.maxVars)
	}

	variations := make([]string, count)
	for i := range variations {
		variations[i] = g.GenerateMessage(template)
	}

	g.log.Debug("generated variations", zap.Int("count", count))
	return variations
}

func (g *Generator) substituteAll(text string, p fieldPattern) string {
	matches := p.re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, loc := range matches {
		sb.WriteString(text[last:loc[0]])

		groups := make([]string, len(loc)/2)
		for i := range groups {
			start, end := loc[2*i], loc[2*i+1]
			if start < 0 {
				continue
			}
			groups[i] = text[start:end]
		}

		sb.WriteString(g.substitute(p, groups))
		last = loc[1]
	}
	sb.WriteString(text[last:])

	return sb.String()
}

func (g *Generator) substitute(p fieldPattern, groups []string) string {
	original := groups[0]

	if cached, ok := g.cache[original]; ok {
		return cached
	}

	if g.rng.Float64() >= g.rate {
		return original
	}

	value := p.handler.Substitute(groups)
	g.cache[original] = value

	return value
}
