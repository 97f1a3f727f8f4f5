package types

import "errors"

// Config holds the file and persistence parameters of a session.
type Config struct {
	DataFile     string `json:"data_file" yaml:"data_file"`
	Mode         string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Format       string `json:"format,omitempty" yaml:"format,omitempty"`
	Compact      bool   `json:"compact,omitempty" yaml:"compact,omitempty"`
	SyncStrategy string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty"`
	BatchSize    int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
}

// Open modes. Connect keeps existing content (creating the file when
// missing); Create truncates the file to an empty store.
const (
	ModeConnect = "connect"
	ModeCreate  = "create"
)

// On-disk row formats. FormatPairs writes each row as [id, value];
// FormatValues writes the bare value and renumbers rows 0..n-1 on load.
const (
	FormatPairs  = "pairs"
	FormatValues = "values"
)

// Sync strategies control when mutations reach the file.
const (
	SyncOnClose   = "on_close"
	SyncImmediate = "immediate"
	SyncBatch     = "batch"
)

// DefaultBatchSize is the number of mutations per flush under SyncBatch.
const DefaultBatchSize = 10

// Config validation errors.
var (
	ErrDataFileEmpty       = errors.New("data file must not be empty")
	ErrModeUnknown         = errors.New("unknown open mode")
	ErrFormatUnknown       = errors.New("unknown row format")
	ErrSyncStrategyUnknown = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid    = errors.New("batch size must be positive")
)

// Validate checks that the Config is well-formed. An empty DataFile is valid
// at config level; openers that need a path check it themselves.
func (c Config) Validate() error {
	switch c.Mode {
	case "", ModeConnect, ModeCreate:
	default:
		return ErrModeUnknown
	}
	switch c.Format {
	case "", FormatPairs, FormatValues:
	default:
		return ErrFormatUnknown
	}
	switch c.SyncStrategy {
	case "", SyncOnClose, SyncImmediate, SyncBatch:
	default:
		return ErrSyncStrategyUnknown
	}
	if c.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	return nil
}

// GetMode returns the open mode, defaulting to ModeConnect.
func (c Config) GetMode() string {
	if c.Mode == "" {
		return ModeConnect
	}
	return c.Mode
}

// GetFormat returns the row format, defaulting to FormatPairs.
func (c Config) GetFormat() string {
	if c.Format == "" {
		return FormatPairs
	}
	return c.Format
}

// GetSyncStrategy returns the sync strategy, defaulting to SyncOnClose.
func (c Config) GetSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncOnClose
	}
	return c.SyncStrategy
}

// GetBatchSize returns the batch size, defaulting to DefaultBatchSize.
func (c Config) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}
