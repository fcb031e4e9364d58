package models

// SourceList is the body of the sources listing endpoint
// (`GET .../v1alpha/sources`).
type SourceList struct {
	Sources []Source `json:"sources"`
}

// Source represents a connected repository source exposed by the target
// application.
type Source struct {
	Name       string     `json:"name"`
	GitHubRepo GitHubRepo `json:"githubRepo"`
}

// GitHubRepo identifies the repository backing a source. Branches is always
// present in the wire form, empty when none are tracked.
type GitHubRepo struct {
	Owner    string   `json:"owner"`
	Repo     string   `json:"repo"`
	Branches []string `json:"branches"`
}
