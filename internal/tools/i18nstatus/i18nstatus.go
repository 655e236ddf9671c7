// Package i18nstatus reports how completely each locale translates the base
// message catalog.
package i18nstatus

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/platform/i18n/catalog"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// Config holds report options.
type Config struct {
	Format string
	// Strict fails the run when any locale misses a base key.
	Strict bool
}

// Report is the translation status of every loaded locale.
type Report struct {
	BaseLocale string         `yaml:"base_locale"`
	Locales    []LocaleStatus `yaml:"locales"`
}

// LocaleStatus counts one locale against the base locale.
type LocaleStatus struct {
	Locale      string   `yaml:"locale"`
	BaseKeys    int      `yaml:"base_keys"`
	Translated  int      `yaml:"translated"`
	Completion  float64  `yaml:"completion"`
	MissingKeys []string `yaml:"missing_keys,omitempty"`
	ExtraKeys   []string `yaml:"extra_keys,omitempty"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Format: FormatMarkdown}
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: markdown or yaml")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "exit non-zero when a locale misses base keys")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Build computes the report for bundle.
func Build(bundle *catalog.Bundle) Report {
	base := bundle.LocaleMessages(catalog.BaseLocale)
	rep := Report{BaseLocale: catalog.BaseLocale.String()}
	for _, locale := range bundle.Locales() {
		missing := bundle.MissingKeys(locale)
		translated := len(base) - len(missing)
		rep.Locales = append(rep.Locales, LocaleStatus{
			Locale:      locale.String(),
			BaseKeys:    len(base),
			Translated:  translated,
			Completion:  percent(translated, len(base)),
			MissingKeys: missing,
			ExtraKeys:   extraKeys(base, bundle.LocaleMessages(locale)),
		})
	}
	return rep
}

// Incomplete lists locales with missing keys.
func (r Report) Incomplete() []string {
	var out []string
	for _, status := range r.Locales {
		if len(status.MissingKeys) > 0 {
			out = append(out, status.Locale)
		}
	}
	return out
}

// Run writes the report for bundle to out.
func Run(cfg Config, bundle *catalog.Bundle, out io.Writer) error {
	if bundle == nil {
		return errors.New("catalog bundle is required")
	}
	if out == nil {
		return errors.New("output is required")
	}
	rep := Build(bundle)

	switch cfg.Format {
	case "", FormatMarkdown:
		if _, err := io.WriteString(out, markdown(rep)); err != nil {
			return err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", cfg.Format)
	}

	if incomplete := rep.Incomplete(); cfg.Strict && len(incomplete) > 0 {
		return fmt.Errorf("incomplete locales: %s", strings.Join(incomplete, ", "))
	}
	return nil
}

func markdown(rep Report) string {
	var b strings.Builder
	b.WriteString("# I18n Status\n\n")
	fmt.Fprintf(&b, "Base locale: `%s`.\n\n", rep.BaseLocale)
	b.WriteString("| Locale | Label | Base Keys | Translated | Completion |\n")
	b.WriteString("| --- | --- | ---: | ---: | ---: |\n")
	for _, status := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %.1f%% |\n",
			status.Locale, i18n.Locale(status.Locale).Label(), status.BaseKeys, status.Translated, status.Completion)
	}
	for _, status := range rep.Locales {
		if len(status.MissingKeys) == 0 && len(status.ExtraKeys) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## `%s`\n", status.Locale)
		writeKeyList(&b, "Missing Keys", status.MissingKeys)
		writeKeyList(&b, "Extra Keys", status.ExtraKeys)
	}
	return b.String()
}

func writeKeyList(b *strings.Builder, title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, key := range keys {
		fmt.Fprintf(b, "- `%s`\n", key)
	}
}

func extraKeys(base, target map[string]string) []string {
	var out []string
	for key := range target {
		if _, ok := base[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func percent(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}
