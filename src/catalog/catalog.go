package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Currencies is the fixed table of 3-letter codes recognized when decomposing
// an instrument symbol.
var Currencies = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD",
	"SEK", "NOK", "DKK", "SGD", "HKD", "MXN", "ZAR", "TRY", "CNH", "PLN",
}

// specialSymbols map onto a single pseudo-currency.
var specialSymbols = map[string]string{
	"XAUUSD": "XAU",
	"XAGUSD": "XAG",
	"BTCUSD": "BTC",
	"ETHUSD": "ETH",
}

var DefaultInstruments = []string{
	"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "USDCAD", "AUDUSD", "NZDUSD",
	"EURGBP", "EURJPY", "EURCHF", "EURCAD", "EURAUD", "EURNZD",
	"GBPJPY", "GBPCHF", "GBPCAD", "GBPAUD", "GBPNZD",
	"AUDJPY", "AUDCAD", "AUDCHF", "AUDNZD",
	"NZDJPY", "NZDCAD", "NZDCHF",
	"CADJPY", "CADCHF", "CHFJPY",
	"XAUUSD", "XAGUSD", "BTCUSD", "ETHUSD",
}

var DefaultEnabled = []string{
	"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "USDCAD", "AUDUSD", "NZDUSD", "XAUUSD",
}

// File is the on-disk YAML shape of an instrument catalog.
type File struct {
	Instruments []string  `yaml:"instruments"`
	Enabled     []string  `yaml:"enabled"`
	Tiers       []float64 `yaml:"tiers"`
	Reference   float64   `yaml:"reference_tier"`
}

// Catalog is the set of known instruments plus the subset enabled for trading.
type Catalog struct {
	instruments []string
	known       map[string]bool
	enabled     []string
	enabledSet  map[string]bool

	// Tiers and Reference are optional overrides for account sizing.
	Tiers     []float64
	Reference float64
}

// New normalizes the instrument lists. Enabled instruments missing from the
// known list are added to it.
func New(instruments, enabled []string) *Catalog {
	c := &Catalog{known: map[string]bool{}, enabledSet: map[string]bool{}}
	for _, sym := range instruments {
		c.addKnown(sym)
	}
	for _, sym := range enabled {
		sym = normalize(sym)
		if sym == "" || c.enabledSet[sym] {
			continue
		}
		c.addKnown(sym)
		c.enabled = append(c.enabled, sym)
		c.enabledSet[sym] = true
	}
	return c
}

func Default() *Catalog {
	return New(DefaultInstruments, DefaultEnabled)
}

// Load reads a catalog from YAML. Empty lists fall back to the defaults.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	instruments := f.Instruments
	if len(instruments) == 0 {
		instruments = DefaultInstruments
	}
	enabled := f.Enabled
	if len(enabled) == 0 {
		enabled = DefaultEnabled
	}
	c := New(instruments, enabled)
	c.Tiers = f.Tiers
	c.Reference = f.Reference
	return c, nil
}

// FromConfig resolves the catalog from a file when configured, from explicit
// env lists otherwise, and from the defaults as last resort.
func FromConfig(cfg Config) (*Catalog, error) {
	if cfg.CatalogFile != "" {
		return Load(cfg.CatalogFile)
	}
	instruments, enabled := cfg.Instruments, cfg.Enabled
	if len(instruments) == 0 {
		instruments = DefaultInstruments
	}
	if len(enabled) == 0 {
		enabled = DefaultEnabled
	}
	return New(instruments, enabled), nil
}

func (c *Catalog) addKnown(sym string) {
	sym = normalize(sym)
	if sym == "" || c.known[sym] {
		return
	}
	c.known[sym] = true
	c.instruments = append(c.instruments, sym)
}

func (c *Catalog) Instruments() []string { return append([]string(nil), c.instruments...) }
func (c *Catalog) Enabled() []string     { return append([]string(nil), c.enabled...) }

func (c *Catalog) IsKnown(sym string) bool   { return c.known[normalize(sym)] }
func (c *Catalog) IsEnabled(sym string) bool { return c.enabledSet[normalize(sym)] }

// Containing lists the instruments of the given set that include currency, in
// catalog order.
func (c *Catalog) Containing(currency string, enabledOnly bool) []string {
	src := c.instruments
	if enabledOnly {
		src = c.enabled
	}
	var out []string
	for _, sym := range src {
		for _, cur := range Decompose(sym) {
			if cur == currency {
				out = append(out, sym)
				break
			}
		}
	}
	return out
}

// Decompose splits an instrument into its constituent currency codes.
// Special symbols yield a single pseudo-currency. Unknown codes are skipped.
func Decompose(sym string) []string {
	sym = normalize(sym)
	if pseudo, ok := specialSymbols[sym]; ok {
		return []string{pseudo}
	}
	var out []string
	for i := 0; i+3 <= len(sym); i += 3 {
		code := sym[i : i+3]
		if isCurrency(code) {
			out = append(out, code)
		}
	}
	return out
}

// Position returns 0 when currency is the base of sym, 1 when it is the quote
// and -1 otherwise.
func Position(sym, currency string) int {
	parts := Decompose(sym)
	if len(parts) == 1 && parts[0] == currency {
		return 0
	}
	sym = normalize(sym)
	if len(sym) >= 6 {
		switch currency {
		case sym[0:3]:
			return 0
		case sym[3:6]:
			return 1
		}
	}
	return -1
}

func isCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

func normalize(sym string) string {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	return strings.NewReplacer("/", "", "_", "", ".", "").Replace(sym)
}
