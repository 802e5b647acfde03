package types

// ScanPolicy is the file-backed scan policy: shared defaults checked
// into a repository so every developer's interception behaves the
// same. Switches merge with explicit command-line flags; a switch
// enabled in either place is enabled. The registry URL applies only
// when the request does not set one.
type ScanPolicy struct {
	AcceptRisks          bool   `yaml:"accept_risks,omitempty"`
	ViewAllRisks         bool   `yaml:"view_all_risks,omitempty"`
	IncludeUnchanged     bool   `yaml:"include_unchanged,omitempty"`
	IncludeUnknownOrigin bool   `yaml:"include_unknown_origin,omitempty"`
	RegistryURL          string `yaml:"registry_url,omitempty"`
}
