package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refminer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BrowserConfig holds settings for the page renderer.
type BrowserConfig struct {
	// Flags are Chrome command-line switches such as "--headless" or
	// "--no-sandbox". Values use the "--name=value" form.
	Flags []string `json:"flags" yaml:"flags"`

	// SettleDelay is the fixed wait after navigation before the page source
	// is captured (default 10s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// Bin optionally points at a Chrome binary. Empty lets rod find or
	// download one.
	Bin string `json:"bin,omitempty" yaml:"bin,omitempty"`
}

// DefaultBrowserFlags mirrors the flags used for unattended captures.
var DefaultBrowserFlags = []string{"--no-sandbox", "--headless"}

// AcquisitionConfig holds settings for the acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dest is the root directory; each article gets Dest/<refid>/.
	Dest string `json:"dest" yaml:"dest"`

	// AllowDirect permits browser-rendered capture when a publisher API has
	// no content for the article.
	AllowDirect bool `json:"allow_direct" yaml:"allow_direct"`

	// Email is sent to the NCBI ID conversion service alongside the tool
	// name, as NCBI asks of API clients.
	Email string `json:"email" yaml:"email"`

	// MaxTrial bounds attempts at fetching the PubMed article page (default 3).
	MaxTrial int `json:"max_trial" yaml:"max_trial"`

	// DownloadDelay is the delay between consecutive articles in a batch.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// Browser configures the page renderer.
	Browser BrowserConfig `json:"browser" yaml:"browser"`

	// Verbose prints discovered links and strategy failures.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// DefaultMaxSpreadsheetBytes is the size ceiling above which workbooks are
// not mined (3 MiB).
const DefaultMaxSpreadsheetBytes int64 = 3 << 20

// MiningConfig holds settings for the mining stage.
type MiningConfig struct {
	// MaxSpreadsheetBytes skips larger .xlsx files (default 3 MiB).
	MaxSpreadsheetBytes int64 `json:"max_spreadsheet_bytes" yaml:"max_spreadsheet_bytes"`

	// ContextRadius is the number of characters kept on each side of a match (default 6).
	ContextRadius int `json:"context_radius" yaml:"context_radius"`
}

// StoreConfig holds settings for the history database.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}
